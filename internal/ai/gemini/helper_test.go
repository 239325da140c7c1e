package gemini

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"google.golang.org/genai"
)

func TestExtractUsage(t *testing.T) {
	t.Run("nil response", func(t *testing.T) {
		assert.Nil(t, extractUsage(nil))
	})

	t.Run("nil UsageMetadata", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{}
		assert.Nil(t, extractUsage(resp))
	})

	t.Run("valid UsageMetadata", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
				PromptTokenCount:     10,
				CandidatesTokenCount: 20,
				TotalTokenCount:      30,
			},
		}
		usage := extractUsage(resp)
		assert.NotNil(t, usage)
		assert.Equal(t, 10, usage.InputTokens)
		assert.Equal(t, 20, usage.OutputTokens)
		assert.Equal(t, 30, usage.TotalTokens)
	})
}

func TestGetGenerateConfig(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		cfg := GetGenerateConfig("gemini-2.5-flash", 0.3)
		assert.NotNil(t, cfg)
		assert.Equal(t, float32(0.3), *cfg.Temperature)
		assert.Equal(t, int32(maxOutputTokens), cfg.MaxOutputTokens)
		assert.Empty(t, cfg.ResponseMIMEType)
		assert.Nil(t, cfg.ThinkingConfig)
	})

	t.Run("Thinking Mode for gemini-3", func(t *testing.T) {
		cfg := GetGenerateConfig("gemini-3-flash-preview", 0)
		assert.NotNil(t, cfg.ThinkingConfig)
		assert.False(t, cfg.ThinkingConfig.IncludeThoughts)
		assert.Equal(t, genai.ThinkingLevelHigh, cfg.ThinkingConfig.ThinkingLevel)
	})
}

func TestFormatResponse(t *testing.T) {
	t.Run("nil and empty", func(t *testing.T) {
		assert.Empty(t, formatResponse(nil))
		assert.Empty(t, formatResponse(&genai.GenerateContentResponse{}))
	})

	t.Run("joins text parts and skips thoughts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []*genai.Part{
					{Text: "thinking about it", Thought: true},
					{Text: "TC-1: Title: A\n"},
					{Text: "TC-2: Title: B"},
				}}},
				{Content: nil},
			},
		}

		assert.Equal(t, "TC-1: Title: A\nTC-2: Title: B", formatResponse(resp))
	})
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		msg  string
		want *domainErrors.AppError
	}{
		{"Error 429: RESOURCE_EXHAUSTED", domainErrors.ErrQuotaExceeded},
		{"You exceeded your current quota", domainErrors.ErrQuotaExceeded},
		{"API key not valid. Please pass a valid API key.", domainErrors.ErrAPIKeyInvalid},
		{"401 Unauthorized", domainErrors.ErrAPIKeyInvalid},
		{"connection reset by peer", domainErrors.ErrAIGeneration},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := classifyError(errors.New(tt.msg))
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestClassifyError_APIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *domainErrors.AppError
	}{
		{"rate limited", genai.APIError{Code: 429, Message: "Resource has been exhausted"}, domainErrors.ErrQuotaExceeded},
		{"unauthorized", genai.APIError{Code: 401, Message: "Request had invalid authentication credentials"}, domainErrors.ErrAPIKeyInvalid},
		{"forbidden", &genai.APIError{Code: 403, Message: "Permission denied"}, domainErrors.ErrAPIKeyInvalid},
		{"invalid argument", genai.APIError{Code: 400, Message: "Invalid argument: model not found", Status: "INVALID_ARGUMENT"}, domainErrors.ErrAIGeneration},
		{"wrapped", fmt.Errorf("calling model: %w", genai.APIError{Code: 429}), domainErrors.ErrQuotaExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyError(tt.err), tt.want)
		})
	}
}

func TestClassifyError_InvalidArgumentMessage(t *testing.T) {
	err := classifyError(errors.New("Error 400, Message: Request contains an invalid argument., Status: INVALID_ARGUMENT"))

	assert.ErrorIs(t, err, domainErrors.ErrAIGeneration)
	assert.NotErrorIs(t, err, domainErrors.ErrAPIKeyInvalid)
}
