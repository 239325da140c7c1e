package ai

import (
	"context"

	"github.com/thomas-vilte/matetest/internal/models"
)

// TestCaseGenerator turns a rendered prompt into the raw free-text test case
// listing produced by a language model.
type TestCaseGenerator interface {
	// Generate renders promptTemplate with promptContext and returns the model
	// output unmodified.
	Generate(ctx context.Context, promptTemplate string, promptContext models.PromptContext) (string, error)
}

// ModelInfo is implemented by generators that can report what they call.
type ModelInfo interface {
	GetModelName() string
	GetProviderName() string
}
