package models

// TokenUsage describes the tokens consumed by a single model call.
type TokenUsage struct {
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	TotalTokens  int    `json:"total_tokens"`
	Model        string `json:"model,omitempty"`
	DurationMs   int64  `json:"duration_ms,omitempty"`
}
