// Package parser extracts test case records from free-text model output.
//
// The output is split into blocks on "TC-<digits>:" markers and every field is
// read from its block by an independent extractor. Records are numbered
// TC-001, TC-002, ... in output order; the digits written by the model are
// discarded.
package parser

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"github.com/thomas-vilte/matetest/internal/logger"
	"github.com/thomas-vilte/matetest/internal/models"
	"github.com/thomas-vilte/matetest/internal/regex"
)

const (
	DefaultTitle          = "No title"
	DefaultPriority       = models.PriorityMedium
	DefaultDescription    = "No description"
	DefaultExpectedResult = "No expected results"

	previewLength = 500
)

type Parser struct {
	now func() time.Time
}

type Option func(*Parser)

// WithClock overrides the source of GeneratedAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse never panics. On an internal failure it returns an empty slice and an
// error wrapping ErrParseResponse.
func (p *Parser) Parse(ctx context.Context, text string) (records []models.TestCaseRecord, err error) {
	log := logger.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error("failed to parse test cases",
				"panic", fmt.Sprint(r),
				"output_length", len(text),
				"preview", preview(text))
			records = []models.TestCaseRecord{}
			err = domainErrors.ErrParseResponse.
				WithContext("reason", fmt.Sprint(r)).
				WithContext("response_length", len(text))
		}
	}()

	blocks := SplitBlocks(text)
	generatedAt := p.now()

	records = make([]models.TestCaseRecord, 0, len(blocks))
	for _, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}
		records = append(records, models.TestCaseRecord{
			ID:             FormatID(len(records) + 1),
			Title:          ExtractTitle(block),
			Priority:       ExtractPriority(block),
			Description:    ExtractDescription(block),
			Steps:          ExtractSteps(block),
			ExpectedResult: ExtractExpectedResult(block),
			GeneratedAt:    generatedAt,
			Approved:       false,
			ApprovedBy:     nil,
		})
	}

	log.Debug("test cases parsed",
		"blocks_count", len(blocks),
		"test_cases_count", len(records))

	return records, nil
}

// SplitBlocks splits on test case markers and drops a blank leading segment.
// A non-blank preamble is kept as a block of its own.
func SplitBlocks(text string) []string {
	blocks := regex.TestCaseMarker.Split(text, -1)
	if len(blocks) > 0 && strings.TrimSpace(blocks[0]) == "" {
		blocks = blocks[1:]
	}
	return blocks
}

// FormatID renders the 1-based sequence number as TC-NNN.
func FormatID(n int) string {
	return fmt.Sprintf("TC-%03d", n)
}

func ExtractTitle(block string) string {
	return extractLine(block, regex.TitleLabel, DefaultTitle)
}

func ExtractPriority(block string) string {
	return extractLine(block, regex.PriorityLabel, DefaultPriority)
}

func ExtractDescription(block string) string {
	return extractLine(block, regex.DescriptionLabel, DefaultDescription)
}

// ExtractSteps collects the dash bullets between "Steps:" and "Expected
// Results:" (or the end of the block). The dash and the character after it are
// stripped. Lines that are not bullets are ignored.
func ExtractSteps(block string) []string {
	steps := []string{}

	loc := regex.StepsLabel.FindStringIndex(block)
	if loc == nil {
		return steps
	}
	section := block[loc[1]:]
	if end := regex.ExpectedResultsLabel.FindStringIndex(section); end != nil {
		section = section[:end[0]]
	}

	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		steps = append(steps, stripBullet(line))
	}
	return steps
}

// ExtractExpectedResult reads from the label up to the first blank line.
func ExtractExpectedResult(block string) string {
	loc := regex.ExpectedResultsLabel.FindStringIndex(block)
	if loc == nil {
		return DefaultExpectedResult
	}

	rest := strings.TrimLeft(block[loc[1]:], " \t\r\n")
	if end := strings.Index(rest, "\n\n"); end >= 0 {
		rest = rest[:end]
	}
	if value := strings.TrimSpace(rest); value != "" {
		return value
	}
	return DefaultExpectedResult
}

func extractLine(block string, label *regexp.Regexp, fallback string) string {
	match := label.FindStringSubmatch(block)
	if match == nil {
		return fallback
	}
	if value := strings.TrimSpace(match[1]); value != "" {
		return value
	}
	return fallback
}

func stripBullet(line string) string {
	runes := []rune(line)
	if len(runes) < 2 {
		return ""
	}
	return strings.TrimSpace(string(runes[2:]))
}

func preview(text string) string {
	if len(text) > previewLength {
		return text[:previewLength] + "..."
	}
	return text
}
