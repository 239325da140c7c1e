package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/thomas-vilte/matetest/internal/i18n"
	"github.com/thomas-vilte/matetest/internal/models"
)

func PrintTokenUsage(w io.Writer, usage *models.TokenUsage, t *i18n.Translations) {
	if usage == nil {
		return
	}
	cyan := color.New(color.FgCyan)
	_, _ = cyan.Fprint(w, "📊 ")
	_, _ = fmt.Fprintf(w, "%s: ", t.GetMessage("ui.token_usage", 0, nil))
	_, _ = fmt.Fprintf(w, "%s %d | ", t.GetMessage("ui.input", 0, nil), usage.InputTokens)
	_, _ = fmt.Fprintf(w, "%s %d | ", t.GetMessage("ui.output", 0, nil), usage.OutputTokens)
	_, _ = fmt.Fprintf(w, "%s %d", t.GetMessage("ui.total", 0, nil), usage.TotalTokens)
	if usage.Model != "" {
		_, _ = Dim.Fprintf(w, " (%s)", usage.Model)
	}
	_, _ = fmt.Fprintln(w)
	if usage.DurationMs > 0 {
		_, _ = fmt.Fprintf(w, "⏱️  %s: %dms\n", t.GetMessage("ui.duration", 0, nil), usage.DurationMs)
	}
}
