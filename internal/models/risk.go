package models

// RiskLevel is the coarse risk classification of a change.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskVerdict is the outcome of the heuristic risk analysis. Factors and
// Details are aligned by index; Details may be empty.
type RiskVerdict struct {
	Level   RiskLevel `yaml:"level" json:"level"`
	Factors []string  `yaml:"factors" json:"factors"`
	Details []string  `yaml:"details" json:"details"`
}
