package report

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"devtriage/internal/domain"
)

// Importer reads a report in some format
type Importer interface {
	Parse(r io.Reader) (*Report, error)
	// ParseSnapshot reads either a report or a bare snapshot and returns the
	// snapshot with the report's target, if any
	ParseSnapshot(r io.Reader) (string, domain.Snapshot, error)
	Format() string
}

// Exporter writes a report in some format
type Exporter interface {
	Export(report *Report, w io.Writer) error
	Format() string
}

// ExporterFor returns the exporter for a format name
func ExporterFor(format string) (Exporter, error) {
	switch format {
	case "text", "":
		return NewTextCodec(), nil
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// ImporterFor picks an importer from a file name's extension
func ImporterFor(path string) (Importer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONCodec(), nil
	case ".yaml", ".yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("cannot infer format of %s (want .json, .yaml or .yml)", path)
	}
}

// parseSnapshot decodes data as a report and falls back to a bare snapshot
// when the document has no snapshot section
func parseSnapshot(data []byte, parse func(io.Reader) (*Report, error), unmarshal func([]byte, any) error) (string, domain.Snapshot, error) {
	var (
		target   string
		snapshot domain.Snapshot
	)
	rep, reportErr := parse(bytes.NewReader(data))
	if reportErr == nil && rep.Snapshot != nil {
		target, snapshot = rep.Target, rep.Snapshot
	} else if err := unmarshal(data, &snapshot); err != nil {
		if reportErr != nil {
			return "", nil, reportErr
		}
		return "", nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	if err := snapshot.Validate(); err != nil {
		return "", nil, err
	}
	return target, snapshot, nil
}
