package models

type ProgressEventType string

const (
	ProgressPRFetched        ProgressEventType = "pr_fetched"
	ProgressRiskAnalyzed     ProgressEventType = "risk_analyzed"
	ProgressPromptBuilt      ProgressEventType = "prompt_built"
	ProgressResponseReceived ProgressEventType = "response_received"
	ProgressTestCasesParsed  ProgressEventType = "test_cases_parsed"
	ProgressNoTestCases      ProgressEventType = "no_test_cases"
	ProgressAnalysisDegraded ProgressEventType = "analysis_degraded"
	ProgressParseDegraded    ProgressEventType = "parse_degraded"
	ProgressResultSaved      ProgressEventType = "result_saved"
	ProgressFailed           ProgressEventType = "failed"
)

// ProgressEvent is reported to the observer while a generation run advances.
type ProgressEvent struct {
	Type    ProgressEventType
	Message string
	Data    map[string]interface{}
}
