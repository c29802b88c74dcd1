package domain

import (
	"fmt"
	"sort"
)

// Settings maps setting keys to values within a single namespace
type Settings map[string]string

// Keys returns the keys in sorted order
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot holds the settings of every namespace retrieved in one dump
type Snapshot map[Namespace]Settings

// NewSnapshot creates an empty snapshot
func NewSnapshot() Snapshot {
	return make(Snapshot, len(namespaces))
}

// Namespaces returns the namespaces present, in dump order
func (s Snapshot) Namespaces() []Namespace {
	var out []Namespace
	for _, ns := range namespaces {
		if _, ok := s[ns]; ok {
			out = append(out, ns)
		}
	}
	return out
}

// Len returns the total number of settings across namespaces
func (s Snapshot) Len() int {
	n := 0
	for _, settings := range s {
		n += len(settings)
	}
	return n
}

// Validate checks that the snapshot holds exactly the fixed namespaces
func (s Snapshot) Validate() error {
	for ns := range s {
		if !ns.Valid() {
			return fmt.Errorf("unexpected namespace %q in snapshot", ns)
		}
	}
	for _, ns := range namespaces {
		if _, ok := s[ns]; !ok {
			return fmt.Errorf("snapshot is missing namespace %q", ns)
		}
	}
	return nil
}
