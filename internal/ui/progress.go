package ui

import (
	"io"
	"time"

	"github.com/thomas-vilte/matetest/internal/i18n"
	"github.com/thomas-vilte/matetest/internal/models"
)

// ProgressReporter turns generation progress events into terminal output.
type ProgressReporter struct {
	w        io.Writer
	t        *i18n.Translations
	provider string
	spinner  *SmartSpinner
	start    time.Time
}

func NewProgressReporter(w io.Writer, t *i18n.Translations, provider string) *ProgressReporter {
	return &ProgressReporter{w: w, t: t, provider: provider}
}

// Start shows the fetching spinner for the given pull request.
func (r *ProgressReporter) Start(repo string, number int) {
	r.start = time.Now()
	r.spin(r.t.GetMessage("progress.fetching", 0, map[string]interface{}{
		"Number": number,
		"Repo":   repo,
	}))
}

// Handle is passed to the generation service as its progress callback.
func (r *ProgressReporter) Handle(event models.ProgressEvent) {
	switch event.Type {
	case models.ProgressPRFetched:
		r.succeed(r.t.GetMessage("progress.pr_fetched", 0, map[string]interface{}{"Title": event.Message}))
		if changes, ok := event.Data["changes"].(models.ChangeSet); ok {
			if changes.IsEmpty() {
				PrintInfo(r.w, r.t.GetMessage("result.no_changes", 0, nil))
			} else {
				ShowChangesTree(r.w, changes, r.t.GetMessage("result.changes_header", 0, nil))
			}
		}
		r.spin(r.t.GetMessage("progress.analyzing", 0, nil))

	case models.ProgressAnalysisDegraded:
		r.stop()
		PrintWarning(r.w, r.t.GetMessage("warning.analysis_degraded", 0, map[string]interface{}{"Error": event.Message}))

	case models.ProgressRiskAnalyzed:
		r.stop()
		if verdict, ok := event.Data["verdict"].(models.RiskVerdict); ok {
			PrintRiskAnalysis(r.w, verdict, r.t)
		}

	case models.ProgressPromptBuilt:
		r.spin(r.t.GetMessage("progress.generating", 0, map[string]interface{}{"Provider": r.provider}))

	case models.ProgressResponseReceived:
		r.stop()
		if usage, ok := event.Data["usage"].(models.TokenUsage); ok {
			PrintTokenUsage(r.w, &usage, r.t)
		}
		r.spin(r.t.GetMessage("progress.parsing", 0, nil))

	case models.ProgressParseDegraded:
		r.stop()
		PrintWarning(r.w, r.t.GetMessage("warning.parse_degraded", 0, map[string]interface{}{"Error": event.Message}))

	case models.ProgressNoTestCases:
		r.stop()
		PrintWarning(r.w, r.t.GetMessage("warning.no_test_cases", 0, nil))
		r.spin(r.t.GetMessage("progress.saving", 0, nil))

	case models.ProgressTestCasesParsed:
		r.spin(r.t.GetMessage("progress.saving", 0, nil))

	case models.ProgressResultSaved:
		r.stop()
		count, _ := event.Data["count"].(int)
		PrintDuration(r.w, r.t.GetMessage("result.saved", count, map[string]interface{}{
			"Count": count,
			"Path":  event.Message,
		}), time.Since(r.start))

	case models.ProgressFailed:
		if r.spinner != nil {
			r.spinner.Error(r.t.GetMessage("progress.failed", 0, nil))
			r.spinner = nil
		}
	}
}

// Finish stops any spinner still running.
func (r *ProgressReporter) Finish() {
	r.stop()
}

func (r *ProgressReporter) spin(msg string) {
	if r.spinner != nil {
		r.spinner.UpdateMessage(msg)
		return
	}
	r.spinner = NewSmartSpinner(r.w, msg)
	r.spinner.Start()
}

func (r *ProgressReporter) succeed(msg string) {
	if r.spinner == nil {
		PrintSuccess(r.w, msg)
		return
	}
	r.spinner.Success(msg)
	r.spinner = nil
}

func (r *ProgressReporter) stop() {
	if r.spinner != nil {
		r.spinner.Stop()
		r.spinner = nil
	}
}
