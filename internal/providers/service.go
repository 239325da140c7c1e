package providers

import (
	"context"

	"github.com/thomas-vilte/matetest/internal/ai"
	"github.com/thomas-vilte/matetest/internal/config"
	"github.com/thomas-vilte/matetest/internal/logger"
	"github.com/thomas-vilte/matetest/internal/output"
	"github.com/thomas-vilte/matetest/internal/services"
)

// NewGenerationService wires the configured VCS client, LLM generator, writer
// and prompt template into a GenerationService.
func NewGenerationService(ctx context.Context, cfg *config.Config) (*services.GenerationService, error) {
	vcsClient, err := NewVCSClient(cfg.VCS)
	if err != nil {
		return nil, err
	}

	generator, err := NewGenerator(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}

	writer, err := output.NewWriter(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	tmpl, err := ai.LoadPromptTemplate(cfg.PromptTemplatePath, cfg.Language)
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx, "generation service configured",
		"vcs_provider", cfg.VCS.Provider,
		"llm_provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"output_format", writer.Format(),
		"custom_template", cfg.PromptTemplatePath != "")

	return services.NewGenerationService(
		services.WithVCSClient(vcsClient),
		services.WithGenerator(generator),
		services.WithWriter(writer),
		services.WithPromptTemplate(tmpl),
	), nil
}
