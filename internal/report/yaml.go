package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"devtriage/internal/domain"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports a report from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*Report, error) {
	var report Report
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &report, nil
}

// ParseSnapshot imports a snapshot from a YAML report or bare snapshot
func (c *YAMLCodec) ParseSnapshot(r io.Reader) (string, domain.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read YAML: %w", err)
	}
	return parseSnapshot(data, c.Parse, yaml.Unmarshal)
}

// Export exports a report to YAML
func (c *YAMLCodec) Export(report *Report, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
