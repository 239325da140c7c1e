package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/thomas-vilte/matetest/internal/ai"
	"github.com/thomas-vilte/matetest/internal/config"
	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"github.com/thomas-vilte/matetest/internal/logger"
	"github.com/thomas-vilte/matetest/internal/models"
)

const systemPrompt = "You are a senior QA engineer who writes precise, reproducible manual test cases."

var (
	_ ai.TestCaseGenerator = (*TestCaseGenerator)(nil)
	_ ai.ModelInfo         = (*TestCaseGenerator)(nil)
)

// ChatClient is the subset of *openai.Client the generator calls.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type TestCaseGenerator struct {
	client      ChatClient
	model       string
	temperature float32
	lastUsage   *models.TokenUsage
}

func NewTestCaseGenerator(cfg config.LLMConfig) (*TestCaseGenerator, error) {
	if cfg.APIKey == "" {
		return nil, domainErrors.ErrAPIKeyMissing.
			WithContext("provider", string(config.AIOpenAI))
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return NewTestCaseGeneratorWithClient(openai.NewClientWithConfig(clientCfg), cfg), nil
}

// NewTestCaseGeneratorWithClient allows injecting a chat client, mainly for tests.
func NewTestCaseGeneratorWithClient(client ChatClient, cfg config.LLMConfig) *TestCaseGenerator {
	model := string(cfg.Model)
	if model == "" {
		model = string(config.DefaultModelForAI(config.AIOpenAI))
	}
	return &TestCaseGenerator{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
	}
}

func (g *TestCaseGenerator) Generate(ctx context.Context, promptTemplate string, promptContext models.PromptContext) (string, error) {
	log := logger.FromContext(ctx)

	prompt, err := ai.BuildPrompt(promptTemplate, promptContext)
	if err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.temperature,
	}

	log.Debug("calling openai API for test cases",
		"model", g.model,
		"prompt_length", len(prompt))

	g.lastUsage = nil
	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Error("openai API call failed",
			"error", err,
			"model", g.model)
		return "", classifyError(err).WithContext("model", g.model)
	}

	g.lastUsage = &models.TokenUsage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
		Model:        g.model,
		DurationMs:   time.Since(start).Milliseconds(),
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		log.Warn("openai returned no choices or empty content")
		return "", domainErrors.ErrEmptyAIOutput.
			WithContext("provider", g.GetProviderName()).
			WithContext("model", g.model)
	}

	log.Debug("received response from openai",
		"finish_reason", resp.Choices[0].FinishReason,
		"total_tokens", resp.Usage.TotalTokens)

	text := resp.Choices[0].Message.Content
	log.Info("test cases generated via openai",
		"model", g.model,
		"response_length", len(text))

	return text, nil
}

func classifyError(err error) *domainErrors.AppError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return domainErrors.ErrQuotaExceeded.WithError(err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return domainErrors.ErrAPIKeyInvalid.WithError(err)
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return domainErrors.ErrQuotaExceeded.WithError(err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return domainErrors.ErrAPIKeyInvalid.WithError(err)
		}
	}

	return domainErrors.ErrAIGeneration.WithError(err)
}

// LastUsage returns token usage of the most recent successful call.
func (g *TestCaseGenerator) LastUsage() *models.TokenUsage {
	return g.lastUsage
}

func (g *TestCaseGenerator) GetModelName() string {
	return g.model
}

func (g *TestCaseGenerator) GetProviderName() string {
	return string(config.AIOpenAI)
}
