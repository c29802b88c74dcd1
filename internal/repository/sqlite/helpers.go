package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"devtriage/internal/domain"
)

// timeLayout is fixed-width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// formatTime renders t in UTC using timeLayout
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime reverses formatTime
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time %q: %w", s, err)
	}
	return t, nil
}

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// joinNamespaces encodes the namespaces present in a snapshot
func joinNamespaces(snapshot domain.Snapshot) string {
	names := make([]string, 0, len(snapshot))
	for _, ns := range snapshot.Namespaces() {
		names = append(names, string(ns))
	}
	return strings.Join(names, ",")
}

// splitNamespaces reverses joinNamespaces
func splitNamespaces(s string) ([]domain.Namespace, error) {
	if s == "" {
		return nil, nil
	}
	var out []domain.Namespace
	for _, name := range strings.Split(s, ",") {
		ns, err := domain.ParseNamespace(name)
		if err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	return out, nil
}

// levelToNull stores a level by name, or NULL when no finding was made
func levelToNull(level domain.SuspicionLevel, ok bool) sql.NullString {
	if !ok {
		return sql.NullString{}
	}
	return stringToNull(level.String())
}

// nullToLevel reverses levelToNull
func nullToLevel(ns sql.NullString) (domain.SuspicionLevel, error) {
	if !ns.Valid {
		return 0, nil
	}
	return domain.ParseSuspicionLevel(ns.String)
}
