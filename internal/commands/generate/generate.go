package generate

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/thomas-vilte/matetest/internal/config"
	"github.com/thomas-vilte/matetest/internal/i18n"
	"github.com/thomas-vilte/matetest/internal/logger"
	"github.com/thomas-vilte/matetest/internal/models"
	"github.com/thomas-vilte/matetest/internal/output"
	"github.com/thomas-vilte/matetest/internal/providers"
	"github.com/thomas-vilte/matetest/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner is the part of the generation service the command needs.
type Runner interface {
	Run(ctx context.Context, repo string, number int, outputPath string, progress func(models.ProgressEvent)) (*models.GenerationResult, error)
}

// RunnerProvider builds a Runner once the configuration is known.
type RunnerProvider func(ctx context.Context, cfg *config.Config) (Runner, error)

// DefaultRunnerProvider wires the real GitHub, LLM and writer implementations.
func DefaultRunnerProvider(ctx context.Context, cfg *config.Config) (Runner, error) {
	svc, err := providers.NewGenerationService(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

type Command struct {
	provider RunnerProvider
	out      io.Writer
}

func NewCommand(provider RunnerProvider, out io.Writer) *Command {
	return &Command{
		provider: provider,
		out:      out,
	}
}

func (c *Command) CreateCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"g"},
		Usage:     t.GetMessage("generate.usage", 0, nil),
		ArgsUsage: t.GetMessage("generate.args_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   t.GetMessage("flag.output", 0, nil),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage: t.GetMessage("flag.format", 0, map[string]interface{}{
					"Formats": strings.Join(output.SupportedFormats(), ", "),
				}),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   t.GetMessage("flag.config", 0, nil),
				Value:   config.DefaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: t.GetMessage("flag.debug", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: t.GetMessage("flag.verbose", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger.Initialize(cmd.Bool("debug"), cmd.Bool("verbose"))
			log := logger.FromContext(ctx)
			start := time.Now()

			repo, number, err := parseArgs(cmd.Args().Slice(), t)
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			if format := cmd.String("format"); format != "" {
				cfg.Output.Format = strings.ToLower(format)
				if err := config.Validate(cfg); err != nil {
					return err
				}
			}
			if err := t.SetLanguage(cfg.Language); err != nil {
				log.Debug("keeping default language", "language", cfg.Language, "error", err)
			}

			outputPath := c.resolveOutputPath(ctx, cfg, cmd.String("output"), cmd.String("format") != "", t)

			logger.Info(ctx, "executing generate command",
				"repo", repo,
				"pr_number", number,
				"llm_provider", cfg.LLM.Provider,
				"model", cfg.LLM.Model,
				"output_path", outputPath)

			runner, err := c.provider(ctx, cfg)
			if err != nil {
				log.Error("failed to create generation service",
					"error", err,
					"duration_ms", time.Since(start).Milliseconds())
				return err
			}

			reporter := ui.NewProgressReporter(c.out, t, string(cfg.LLM.Provider))
			reporter.Start(repo, number)
			result, err := runner.Run(ctx, repo, number, outputPath, reporter.Handle)
			reporter.Finish()
			if err != nil {
				log.Error("generation failed",
					"error", err,
					"duration_ms", time.Since(start).Milliseconds())
				return err
			}

			log.Info("generate command finished",
				"test_cases_count", len(result.TestCases),
				"risk_level", result.RiskAnalysis.Level,
				"duration_ms", time.Since(start).Milliseconds())

			ui.PrintTestCaseSummary(c.out, result.TestCases, t)
			return nil
		},
	}
}

// resolveOutputPath picks the output path and keeps its extension consistent
// with the format. A configured path whose extension was overridden by
// --format is renamed; an explicit --output is kept and only warned about.
func (c *Command) resolveOutputPath(ctx context.Context, cfg *config.Config, explicit string, formatOverridden bool, t *i18n.Translations) string {
	path := cfg.ResolveOutputPath(explicit)
	if output.MatchesFormat(path, cfg.Output.Format) {
		return path
	}

	if explicit == "" && formatOverridden {
		aligned := output.WithFormatExtension(path, cfg.Output.Format)
		logger.Warn(ctx, "output path extension adjusted to format",
			"configured_path", path,
			"output_path", aligned,
			"output_format", cfg.Output.Format)
		return aligned
	}

	logger.Warn(ctx, "output path does not match format",
		"output_path", path,
		"output_format", cfg.Output.Format)
	ui.PrintWarning(c.out, t.GetMessage("warning.format_mismatch", 0, map[string]interface{}{
		"Path":   path,
		"Format": cfg.Output.Format,
	}))
	return path
}

func parseArgs(args []string, t *i18n.Translations) (string, int, error) {
	if len(args) != 2 {
		return "", 0, fmt.Errorf("%s", t.GetMessage("error.missing_args", 0, nil))
	}
	number, err := strconv.Atoi(args[1])
	if err != nil || number <= 0 {
		return "", 0, fmt.Errorf("%s", t.GetMessage("error.invalid_pr_number", 0, map[string]interface{}{"Value": args[1]}))
	}
	return args[0], number, nil
}
