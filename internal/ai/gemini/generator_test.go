package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/matetest/internal/config"
	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"github.com/thomas-vilte/matetest/internal/models"
	"google.golang.org/genai"
)

func newTestGenerator(t *testing.T) *TestCaseGenerator {
	t.Helper()
	gen, err := NewTestCaseGenerator(context.Background(), config.LLMConfig{
		Provider:    config.AIGemini,
		Model:       config.ModelGeminiV25Flash,
		Temperature: 0.2,
		APIKey:      "test",
	})
	require.NoError(t, err)
	return gen
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     100,
			CandidatesTokenCount: 50,
			TotalTokenCount:      150,
		},
	}
}

func TestNewTestCaseGenerator(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		_, err := NewTestCaseGenerator(context.Background(), config.LLMConfig{Provider: config.AIGemini})

		assert.ErrorIs(t, err, domainErrors.ErrAPIKeyMissing)
	})

	t.Run("default model when empty", func(t *testing.T) {
		gen, err := NewTestCaseGenerator(context.Background(), config.LLMConfig{APIKey: "test"})

		require.NoError(t, err)
		assert.Equal(t, string(config.ModelGeminiV25Flash), gen.GetModelName())
		assert.Equal(t, "gemini", gen.GetProviderName())
	})
}

func TestTestCaseGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	promptContext := models.PromptContext{"pr_title": "Add login"}

	t.Run("successful generation renders the prompt", func(t *testing.T) {
		gen := newTestGenerator(t)
		var gotPrompt, gotModel string
		var gotTemperature float32
		gen.generateFn = func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotPrompt, gotModel, gotTemperature = prompt, model, *cfg.Temperature
			return textResponse("TC-1: Title: Login"), nil
		}

		text, err := gen.Generate(ctx, "Cases for {{.pr_title}}", promptContext)

		require.NoError(t, err)
		assert.Equal(t, "TC-1: Title: Login", text)
		assert.Equal(t, "Cases for Add login", gotPrompt)
		assert.Equal(t, "gemini-2.5-flash", gotModel)
		assert.Equal(t, float32(0.2), gotTemperature)
		require.NotNil(t, gen.LastUsage())
		assert.Equal(t, 150, gen.LastUsage().TotalTokens)
		assert.Equal(t, "gemini-2.5-flash", gen.LastUsage().Model)
	})

	t.Run("template error does not call the API", func(t *testing.T) {
		gen := newTestGenerator(t)
		called := false
		gen.generateFn = func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			called = true
			return nil, nil
		}

		_, err := gen.Generate(ctx, "{{.unknown_key}}", promptContext)

		assert.ErrorIs(t, err, domainErrors.ErrRenderPrompt)
		assert.False(t, called)
	})

	t.Run("quota error", func(t *testing.T) {
		gen := newTestGenerator(t)
		gen.generateFn = func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("Error 429, Message: Resource exhausted")
		}

		_, err := gen.Generate(ctx, "{{.pr_title}}", promptContext)

		assert.ErrorIs(t, err, domainErrors.ErrQuotaExceeded)
	})

	t.Run("generic API error", func(t *testing.T) {
		gen := newTestGenerator(t)
		gen.generateFn = func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("deadline exceeded")
		}

		_, err := gen.Generate(ctx, "{{.pr_title}}", promptContext)

		assert.ErrorIs(t, err, domainErrors.ErrAIGeneration)
	})

	t.Run("empty response", func(t *testing.T) {
		gen := newTestGenerator(t)
		gen.generateFn = func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		}

		_, err := gen.Generate(ctx, "{{.pr_title}}", promptContext)

		assert.ErrorIs(t, err, domainErrors.ErrEmptyAIOutput)
	})
}

func TestTestCaseGenerator_LastUsage(t *testing.T) {
	ctx := context.Background()
	promptContext := models.PromptContext{"pr_title": "Add login"}
	gen := newTestGenerator(t)

	gen.generateFn = func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return textResponse("TC-1: ok"), nil
	}
	_, err := gen.Generate(ctx, "{{.pr_title}}", promptContext)
	require.NoError(t, err)
	require.NotNil(t, gen.LastUsage())
	assert.Equal(t, 150, gen.LastUsage().TotalTokens)

	gen.generateFn = func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		resp := textResponse("TC-1: ok")
		resp.UsageMetadata = nil
		return resp, nil
	}
	_, err = gen.Generate(ctx, "{{.pr_title}}", promptContext)
	require.NoError(t, err)
	assert.Nil(t, gen.LastUsage(), "usage of the previous call must not leak")

	gen.generateFn = func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return nil, errors.New("deadline exceeded")
	}
	_, err = gen.Generate(ctx, "{{.pr_title}}", promptContext)
	require.Error(t, err)
	assert.Nil(t, gen.LastUsage())
}
