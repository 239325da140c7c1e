package models

import "time"

// Priority labels the prompt asks the model to use. Parsed records keep the
// model's text as written, so other values can appear.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

type (
	// TestCaseRecord is one test case extracted from the model output.
	TestCaseRecord struct {
		ID             string    `yaml:"id" json:"id"`
		Title          string    `yaml:"title" json:"title"`
		Priority       string    `yaml:"priority" json:"priority"`
		Description    string    `yaml:"description" json:"description"`
		Steps          []string  `yaml:"steps" json:"steps"`
		ExpectedResult string    `yaml:"expected_result" json:"expected_result"`
		GeneratedAt    time.Time `yaml:"generated_at" json:"generated_at"`
		Approved       bool      `yaml:"approved" json:"approved"`
		ApprovedBy     *string   `yaml:"approved_by" json:"approved_by"`
	}

	// GenerationResult is the document persisted at the end of a run.
	GenerationResult struct {
		PRNumber     int              `yaml:"pr_number" json:"pr_number"`
		PRTitle      string           `yaml:"pr_title" json:"pr_title"`
		RiskAnalysis RiskVerdict      `yaml:"risk_analysis" json:"risk_analysis"`
		TestCases    []TestCaseRecord `yaml:"test_cases" json:"test_cases"`
	}
)

// PromptContext is the flat string context handed to prompt templates.
type PromptContext map[string]string
