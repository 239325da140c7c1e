package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/thomas-vilte/matetest/internal/commands/generate"
	"github.com/thomas-vilte/matetest/internal/config"
	"github.com/thomas-vilte/matetest/internal/i18n"
	"github.com/thomas-vilte/matetest/internal/ui"
	"github.com/thomas-vilte/matetest/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	translations, err := i18n.NewTranslations(defaultLanguage())
	if err != nil {
		log.Fatalf("error loading translations: %v", err)
	}

	app := newApp(translations)
	if err := app.Run(context.Background(), os.Args); err != nil {
		ui.HandleAppError(os.Stderr, err, translations)
		os.Exit(1)
	}
}

// defaultLanguage picks the CLI language before the config file is read.
func defaultLanguage() string {
	if lang := os.Getenv("MATETEST_LANG"); lang != "" {
		return config.GetLocaleConfig(lang)
	}
	return config.LangEN
}

func newApp(t *i18n.Translations) *cli.Command {
	versionCommand := &cli.Command{
		Name:  "version",
		Usage: t.GetMessage("version.usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintln(cmd.Root().Writer, t.GetMessage("version.output", 0, map[string]interface{}{
				"Version": version.FullVersion(),
			}))
			return err
		},
	}

	return &cli.Command{
		Name:        "matetest",
		Usage:       t.GetMessage("app.usage", 0, nil),
		Version:     version.Version,
		Description: t.GetMessage("app.description", 0, nil),
		Commands: []*cli.Command{
			generate.NewCommand(generate.DefaultRunnerProvider, os.Stdout).CreateCommand(t),
			versionCommand,
		},
		EnableShellCompletion: true,
	}
}
