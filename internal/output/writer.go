// Package output persists generation results as YAML or JSON documents.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"github.com/thomas-vilte/matetest/internal/models"
)

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Writer persists a GenerationResult to a file.
type Writer interface {
	Write(result models.GenerationResult, path string) error
	Format() string
}

// NewWriter returns the writer for a format identifier.
func NewWriter(format string) (Writer, error) {
	switch strings.ToLower(format) {
	case FormatYAML, "yml":
		return NewYAMLWriter(), nil
	case FormatJSON:
		return NewJSONWriter(), nil
	default:
		return nil, domainErrors.ErrProviderNotSupported.
			WithContext("output_format", format).
			WithSuggestion("Use one of: " + strings.Join(SupportedFormats(), ", "))
	}
}

// SupportedFormats lists the accepted format identifiers.
func SupportedFormats() []string {
	return []string{FormatYAML, FormatJSON}
}

// MatchesFormat reports whether path's extension fits format. Paths with an
// extension that belongs to no supported format always match.
func MatchesFormat(path, format string) bool {
	pathFormat, known := formatForExt(filepath.Ext(path))
	if !known {
		return true
	}
	return pathFormat == canonicalFormat(format)
}

// WithFormatExtension replaces a known output extension in path with the one
// for format. Other paths are returned unchanged.
func WithFormatExtension(path, format string) string {
	ext := filepath.Ext(path)
	if _, known := formatForExt(ext); !known {
		return path
	}
	return strings.TrimSuffix(path, ext) + "." + canonicalFormat(format)
}

func formatForExt(ext string) (string, bool) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	default:
		return "", false
	}
}

func canonicalFormat(format string) string {
	format = strings.ToLower(format)
	if format == "yml" {
		return FormatYAML
	}
	return format
}

type encodeFunc func(result models.GenerationResult) ([]byte, error)

// writeAtomic encodes into memory, writes a temp file next to path and renames
// it into place. The destination is untouched unless every step succeeds.
func writeAtomic(result models.GenerationResult, path string, encode encodeFunc) error {
	data, err := encode(normalize(result))
	if err != nil {
		return domainErrors.ErrEncodeOutput.
			WithContext("path", path).
			WithError(err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return domainErrors.ErrWriteOutput.
			WithContext("path", path).
			WithError(err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return domainErrors.ErrWriteOutput.
			WithContext("path", path).
			WithError(cause)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return domainErrors.ErrWriteOutput.
			WithContext("path", path).
			WithError(err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return domainErrors.ErrWriteOutput.
			WithContext("path", path).
			WithError(fmt.Errorf("error renaming temp file: %w", err))
	}
	return nil
}

// normalize replaces nil slices so they encode as empty sequences.
func normalize(result models.GenerationResult) models.GenerationResult {
	if result.RiskAnalysis.Factors == nil {
		result.RiskAnalysis.Factors = []string{}
	}
	if result.RiskAnalysis.Details == nil {
		result.RiskAnalysis.Details = []string{}
	}
	if result.TestCases == nil {
		result.TestCases = []models.TestCaseRecord{}
	}

	cases := make([]models.TestCaseRecord, len(result.TestCases))
	for i, tc := range result.TestCases {
		if tc.Steps == nil {
			tc.Steps = []string{}
		}
		cases[i] = tc
	}
	result.TestCases = cases
	return result
}
