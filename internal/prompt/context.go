// Package prompt flattens a pull request and its risk verdict into the string
// context consumed by prompt templates.
package prompt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/thomas-vilte/matetest/internal/models"
)

// Context keys available to prompt templates.
const (
	KeyPRNumber      = "pr_number"
	KeyPRTitle       = "pr_title"
	KeyPRDescription = "pr_description"
	KeyBaseBranch    = "base_branch"
	KeyHeadBranch    = "head_branch"
	KeyRiskLevel     = "risk_level"
	KeyRiskFactors   = "risk_factors"
	KeyChanges       = "changes"
	KeyDiffs         = "diffs"
)

const (
	// MaxDiffLength bounds every diff included in the context, in characters.
	MaxDiffLength = 1000

	noRiskFactors = "No risk factors detected"
	noFileChanges = "No file changes"
	noCodeChanges = "No code changes available"
)

var changeSections = []struct {
	category string
	header   string
}{
	{models.ChangeAdded, "Added files:"},
	{models.ChangeModified, "Modified files:"},
	{models.ChangeRemoved, "Removed files:"},
}

// Builder is stateless; Build is deterministic for identical inputs.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Build(pr models.PullRequestInfo, risk models.RiskVerdict) models.PromptContext {
	return models.PromptContext{
		KeyPRNumber:      strconv.Itoa(pr.Number),
		KeyPRTitle:       pr.Title,
		KeyPRDescription: pr.Description,
		KeyBaseBranch:    pr.BaseBranch,
		KeyHeadBranch:    pr.HeadBranch,
		KeyRiskLevel:     string(risk.Level),
		KeyRiskFactors:   FormatRiskFactors(risk),
		KeyChanges:       FormatChanges(pr.Changes),
		KeyDiffs:         FormatDiffs(pr.Diffs),
	}
}

// FormatRiskFactors renders one "- factor[: detail]" line per factor. Factors
// without a detail at the same index are rendered bare.
func FormatRiskFactors(risk models.RiskVerdict) string {
	if len(risk.Factors) == 0 {
		return noRiskFactors
	}

	lines := make([]string, 0, len(risk.Factors))
	for i, factor := range risk.Factors {
		if i < len(risk.Details) && risk.Details[i] != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", factor, risk.Details[i]))
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s", factor))
	}
	return strings.Join(lines, "\n")
}

func FormatChanges(changes models.ChangeSet) string {
	var sections []string
	for _, section := range changeSections {
		files := changes.Files(section.category)
		if len(files) == 0 {
			continue
		}
		var sb strings.Builder
		sb.WriteString(section.header)
		for _, file := range files {
			sb.WriteString("\n  - ")
			sb.WriteString(file)
		}
		sections = append(sections, sb.String())
	}

	if len(sections) == 0 {
		return noFileChanges
	}
	return strings.Join(sections, "\n")
}

// FormatDiffs renders a fenced block per file with a non-blank diff, ordered by
// path.
func FormatDiffs(diffs models.DiffSet) string {
	paths := make([]string, 0, len(diffs))
	for path, diff := range diffs {
		if strings.TrimSpace(diff) != "" {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return noCodeChanges
	}
	sort.Strings(paths)

	blocks := make([]string, 0, len(paths))
	for _, path := range paths {
		blocks = append(blocks, fmt.Sprintf("File: %s\n```diff\n%s\n```", path, truncate(strings.TrimSpace(diffs[path]), MaxDiffLength)))
	}
	return strings.Join(blocks, "\n\n")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
