package report

import (
	"encoding/json"
	"fmt"
	"io"

	"devtriage/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a report from JSON
func (c *JSONCodec) Parse(r io.Reader) (*Report, error) {
	var report Report
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &report, nil
}

// ParseSnapshot imports a snapshot from a JSON report or bare snapshot
func (c *JSONCodec) ParseSnapshot(r io.Reader) (string, domain.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read JSON: %w", err)
	}
	return parseSnapshot(data, c.Parse, json.Unmarshal)
}

// Export exports a report to JSON
func (c *JSONCodec) Export(report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
