// Package report bundles a snapshot and its findings into a report and
// renders it as text, JSON or YAML.
package report

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"devtriage/internal/domain"
)

// Report is the outcome of one dump and audit of a device
type Report struct {
	ID          string           `json:"id" yaml:"id"`
	Target      string           `json:"target" yaml:"target"`
	CollectedAt time.Time        `json:"collected_at" yaml:"collected_at"`
	Snapshot    domain.Snapshot  `json:"snapshot" yaml:"snapshot"`
	Findings    []domain.Finding `json:"findings" yaml:"findings"`
}

// New creates a report with a fresh ID
func New(target string, snapshot domain.Snapshot, findings []domain.Finding) *Report {
	if findings == nil {
		findings = []domain.Finding{}
	}
	return &Report{
		ID:          uuid.NewString(),
		Target:      target,
		CollectedAt: time.Now().UTC().Truncate(time.Second),
		Snapshot:    snapshot,
		Findings:    findings,
	}
}

// Summary counts findings per level
func (r *Report) Summary() map[domain.SuspicionLevel]int {
	counts := make(map[domain.SuspicionLevel]int)
	for _, f := range r.Findings {
		counts[f.Level]++
	}
	return counts
}

// Highest returns the most severe level among the findings
func (r *Report) Highest() (domain.SuspicionLevel, bool) {
	var highest domain.SuspicionLevel
	for _, f := range r.Findings {
		if f.Level > highest {
			highest = f.Level
		}
	}
	return highest, highest.Valid()
}

// Prioritized returns the findings ordered from most to least severe.
// Findings of equal level keep their audit order.
func (r *Report) Prioritized() []domain.Finding {
	out := make([]domain.Finding, len(r.Findings))
	copy(out, r.Findings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Level > out[j].Level
	})
	return out
}

// Exceeds reports whether any finding is at or above threshold
func (r *Report) Exceeds(threshold domain.SuspicionLevel) bool {
	for _, f := range r.Findings {
		if f.Level.AtLeast(threshold) {
			return true
		}
	}
	return false
}
