// Package parser turns raw device command output into domain values.
package parser

import (
	"fmt"
	"strings"

	"devtriage/internal/domain"
)

// Func parses one namespace's raw listing into settings
type Func func(output string) (domain.Settings, error)

// ParseSettings parses `settings list <namespace>` output.
// Format: one key=value per line; the value runs to the end of the line and
// may itself contain '='. A repeated key keeps its last value.
func ParseSettings(output string) (domain.Settings, error) {
	settings := make(domain.Settings)

	for i, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: missing '=' in %q", i+1, line)
		}
		if key == "" {
			return nil, fmt.Errorf("line %d: empty key", i+1)
		}

		settings[key] = value
	}

	return settings, nil
}
