// Package risk scores a pull request's changes against fixed heuristic rules.
package risk

import (
	"fmt"
	"regexp"
	"strings"

	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"github.com/thomas-vilte/matetest/internal/models"
	"github.com/thomas-vilte/matetest/internal/regex"
)

const (
	FactorSecurity   = "Security Risk"
	FactorDependency = "Dependency Changes"
	FactorBreaking   = "Breaking Changes"
	FactorError      = "Analysis Error"
)

// dependencyManifests are matched as substrings of modified file paths.
var dependencyManifests = []string{
	"requirements.txt",
	"package.json",
	"build.gradle",
	"pom.xml",
}

type rule struct {
	factor string
	detail string
	match  func(changes models.ChangeSet, diffs models.DiffSet) bool
}

// Analyzer evaluates the risk rules. It holds no mutable state and can be
// shared between concurrent runs.
type Analyzer struct {
	rules []rule
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		rules: []rule{
			{
				factor: FactorSecurity,
				detail: "Security-sensitive code changes detected",
				match: func(_ models.ChangeSet, diffs models.DiffSet) bool {
					return anyDiffMatches(diffs, regex.SecurityKeywords)
				},
			},
			{
				factor: FactorDependency,
				detail: "Package dependencies modified",
				match: func(changes models.ChangeSet, _ models.DiffSet) bool {
					return touchesManifest(changes.Files(models.ChangeModified))
				},
			},
			{
				factor: FactorBreaking,
				detail: "Breaking changes detected",
				match: func(_ models.ChangeSet, diffs models.DiffSet) bool {
					return anyDiffMatches(diffs, regex.BreakingKeywords)
				},
			},
		},
	}
}

// Analyze never fails the caller. When a rule faults, the returned verdict is
// the synthetic High/"Analysis Error" one and err wraps ErrRiskAnalysis.
func (a *Analyzer) Analyze(changes models.ChangeSet, diffs models.DiffSet) (verdict models.RiskVerdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprint(r)
			verdict = models.RiskVerdict{
				Level:   models.RiskHigh,
				Factors: []string{FactorError},
				Details: []string{msg},
			}
			err = domainErrors.ErrRiskAnalysis.WithContext("panic", msg)
		}
	}()

	if changes == nil {
		changes = models.ChangeSet{}
	}
	if diffs == nil {
		diffs = models.DiffSet{}
	}

	factors := make([]string, 0, len(a.rules))
	details := make([]string, 0, len(a.rules))
	for _, r := range a.rules {
		if r.match(changes, diffs) {
			factors = append(factors, r.factor)
			details = append(details, r.detail)
		}
	}

	return models.RiskVerdict{
		Level:   LevelFor(len(factors)),
		Factors: factors,
		Details: details,
	}, nil
}

// LevelFor maps a factor count to a level: none is Low, one is Medium and two
// or more is High.
func LevelFor(factorCount int) models.RiskLevel {
	switch {
	case factorCount >= 2:
		return models.RiskHigh
	case factorCount == 1:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func anyDiffMatches(diffs models.DiffSet, patterns []*regexp.Regexp) bool {
	for _, content := range diffs {
		for _, p := range patterns {
			if p.MatchString(content) {
				return true
			}
		}
	}
	return false
}

func touchesManifest(paths []string) bool {
	for _, path := range paths {
		for _, manifest := range dependencyManifests {
			if strings.Contains(path, manifest) {
				return true
			}
		}
	}
	return false
}
