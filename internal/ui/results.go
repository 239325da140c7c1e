package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/thomas-vilte/matetest/internal/i18n"
	"github.com/thomas-vilte/matetest/internal/models"
)

func riskColor(level models.RiskLevel) *color.Color {
	switch level {
	case models.RiskHigh:
		return Error
	case models.RiskMedium:
		return Warning
	default:
		return Success
	}
}

// PrintRiskAnalysis prints the verdict level followed by each factor and its detail.
func PrintRiskAnalysis(w io.Writer, verdict models.RiskVerdict, t *i18n.Translations) {
	PrintSectionBanner(w, t.GetMessage("result.risk_header", 0, nil))
	PrintKeyValue(w, t.GetMessage("result.risk_level", 0, nil), riskColor(verdict.Level).Sprint(verdict.Level))

	if len(verdict.Factors) == 0 {
		_, _ = Dim.Fprintf(w, "   %s\n", t.GetMessage("result.no_factors", 0, nil))
		return
	}
	for i, factor := range verdict.Factors {
		_, _ = fmt.Fprintf(w, "   • %s\n", factor)
		if i < len(verdict.Details) && verdict.Details[i] != "" {
			_, _ = Dim.Fprintf(w, "     %s\n", verdict.Details[i])
		}
	}
}

// PrintTestCaseSummary lists the id, priority and title of each record.
func PrintTestCaseSummary(w io.Writer, records []models.TestCaseRecord, t *i18n.Translations) {
	if len(records) == 0 {
		return
	}
	PrintSectionBanner(w, t.GetMessage("result.test_cases_header", 0, nil))
	for _, record := range records {
		priority := riskColor(models.RiskLevel(record.Priority)).Sprintf("[%s]", record.Priority)
		_, _ = fmt.Fprintf(w, "   %s %s %s\n", Accent.Sprint(record.ID), priority, record.Title)
	}
}
