package providers

import (
	"context"
	"strings"

	"github.com/thomas-vilte/matetest/internal/ai"
	"github.com/thomas-vilte/matetest/internal/ai/gemini"
	"github.com/thomas-vilte/matetest/internal/ai/openai"
	"github.com/thomas-vilte/matetest/internal/config"
	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
)

// NewGenerator creates a TestCaseGenerator for the configured LLM provider.
func NewGenerator(ctx context.Context, cfg config.LLMConfig) (ai.TestCaseGenerator, error) {
	switch cfg.Provider {
	case config.AIGemini:
		g, err := gemini.NewTestCaseGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.AIOpenAI:
		g, err := openai.NewTestCaseGenerator(cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		supported := make([]string, 0, len(config.SupportedAIs()))
		for _, a := range config.SupportedAIs() {
			supported = append(supported, string(a))
		}
		return nil, domainErrors.ErrProviderNotSupported.
			WithContext("llm_provider", string(cfg.Provider)).
			WithSuggestion("Set llm.provider to one of: " + strings.Join(supported, ", "))
	}
}
