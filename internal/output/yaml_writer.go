package output

import (
	"bytes"

	"github.com/thomas-vilte/matetest/internal/models"
	"gopkg.in/yaml.v3"
)

type YAMLWriter struct {
	indent int
}

func NewYAMLWriter() *YAMLWriter {
	return &YAMLWriter{indent: 2}
}

func (w *YAMLWriter) Write(result models.GenerationResult, path string) error {
	return writeAtomic(result, path, w.encode)
}

func (w *YAMLWriter) Format() string {
	return FormatYAML
}

func (w *YAMLWriter) encode(result models.GenerationResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(w.indent)
	if err := enc.Encode(result); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
