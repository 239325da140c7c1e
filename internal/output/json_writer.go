package output

import (
	"encoding/json"

	"github.com/thomas-vilte/matetest/internal/models"
)

type JSONWriter struct{}

func NewJSONWriter() *JSONWriter {
	return &JSONWriter{}
}

func (w *JSONWriter) Write(result models.GenerationResult, path string) error {
	return writeAtomic(result, path, func(r models.GenerationResult) ([]byte, error) {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	})
}

func (w *JSONWriter) Format() string {
	return FormatJSON
}
