package gemini

import (
	"errors"
	"net/http"
	"strings"

	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"github.com/thomas-vilte/matetest/internal/models"
	"google.golang.org/genai"
)

const maxOutputTokens = 8192

// extractUsage extracts usage metadata from the Gemini response
func extractUsage(resp *genai.GenerateContentResponse) *models.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &models.TokenUsage{
		InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
	}
}

// GetGenerateConfig returns the generation settings for the model, enabling
// thinking mode on models that support it.
func GetGenerateConfig(modelName string, temperature float32) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     float32Ptr(temperature),
		MaxOutputTokens: int32(maxOutputTokens),
	}

	if strings.HasPrefix(modelName, "gemini-3") {
		config.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingLevel:   genai.ThinkingLevelHigh,
		}
	}

	return config
}

func float32Ptr(f float32) *float32 {
	return &f
}

// formatResponse concatenates the text parts of every candidate, skipping
// thought parts.
func formatResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	var formattedContent strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			if part.Text != "" {
				formattedContent.WriteString(part.Text)
			}
		}
	}
	return formattedContent.String()
}

// classifyError maps SDK errors onto domain errors, by HTTP status when the
// SDK returns an APIError and by message otherwise.
func classifyError(err error) *domainErrors.AppError {
	if code, ok := apiErrorCode(err); ok {
		switch code {
		case http.StatusTooManyRequests:
			return domainErrors.ErrQuotaExceeded.WithError(err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return domainErrors.ErrAPIKeyInvalid.WithError(err)
		default:
			return domainErrors.ErrAIGeneration.WithError(err)
		}
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "quota") ||
		strings.Contains(errMsg, "rate limit") ||
		strings.Contains(errMsg, "resource exhausted") ||
		strings.Contains(errMsg, "resource_exhausted") {
		return domainErrors.ErrQuotaExceeded.WithError(err)
	}

	if strings.Contains(errMsg, "api key not valid") ||
		strings.Contains(errMsg, "api_key_invalid") ||
		strings.Contains(errMsg, "invalid api key") ||
		strings.Contains(errMsg, "unauthorized") ||
		strings.Contains(errMsg, "authentication") {
		return domainErrors.ErrAPIKeyInvalid.WithError(err)
	}

	return domainErrors.ErrAIGeneration.WithError(err)
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}
