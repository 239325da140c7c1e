package gemini

import (
	"context"
	"errors"
	"time"

	"github.com/thomas-vilte/matetest/internal/ai"
	"github.com/thomas-vilte/matetest/internal/config"
	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"github.com/thomas-vilte/matetest/internal/logger"
	"github.com/thomas-vilte/matetest/internal/models"
	"google.golang.org/genai"
)

var (
	_ ai.TestCaseGenerator = (*TestCaseGenerator)(nil)
	_ ai.ModelInfo         = (*TestCaseGenerator)(nil)
)

// GenerateFunc performs the model call. Replaced in tests.
type GenerateFunc func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

type TestCaseGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
	generateFn  GenerateFunc
	lastUsage   *models.TokenUsage
}

func NewTestCaseGenerator(ctx context.Context, cfg config.LLMConfig) (*TestCaseGenerator, error) {
	if cfg.APIKey == "" {
		return nil, domainErrors.ErrAPIKeyMissing.
			WithContext("provider", string(config.AIGemini))
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		if appErr := classifyError(err); errors.Is(appErr, domainErrors.ErrAPIKeyInvalid) {
			return nil, appErr
		}
		return nil, domainErrors.NewAppError(domainErrors.TypeAI, "error creating AI client", err)
	}

	model := string(cfg.Model)
	if model == "" {
		model = string(config.DefaultModelForAI(config.AIGemini))
	}

	g := &TestCaseGenerator{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
	}
	g.generateFn = g.defaultGenerate
	return g, nil
}

func (g *TestCaseGenerator) defaultGenerate(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
}

func (g *TestCaseGenerator) Generate(ctx context.Context, promptTemplate string, promptContext models.PromptContext) (string, error) {
	log := logger.FromContext(ctx)

	prompt, err := ai.BuildPrompt(promptTemplate, promptContext)
	if err != nil {
		return "", err
	}

	log.Debug("calling gemini API for test cases",
		"model", g.model,
		"prompt_length", len(prompt))

	g.lastUsage = nil
	start := time.Now()
	resp, err := g.generateFn(ctx, g.model, prompt, GetGenerateConfig(g.model, g.temperature))
	if err != nil {
		log.Error("gemini API call failed",
			"error", err,
			"model", g.model)
		return "", classifyError(err).WithContext("model", g.model)
	}

	if usage := extractUsage(resp); usage != nil {
		usage.Model = g.model
		usage.DurationMs = time.Since(start).Milliseconds()
		g.lastUsage = usage
		log.Debug("gemini usage",
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"duration_ms", usage.DurationMs)
	}

	text := formatResponse(resp)
	if text == "" {
		return "", domainErrors.ErrEmptyAIOutput.
			WithContext("provider", g.GetProviderName()).
			WithContext("model", g.model)
	}

	log.Info("test cases generated via gemini",
		"model", g.model,
		"response_length", len(text))

	return text, nil
}

// LastUsage returns token usage of the most recent call, or nil when that
// call failed or the API did not report it.
func (g *TestCaseGenerator) LastUsage() *models.TokenUsage {
	return g.lastUsage
}

func (g *TestCaseGenerator) GetModelName() string {
	return g.model
}

func (g *TestCaseGenerator) GetProviderName() string {
	return string(config.AIGemini)
}
