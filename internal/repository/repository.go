package repository

import (
	"context"
	"errors"
	"time"

	"devtriage/internal/domain"
	"devtriage/internal/report"
)

// ErrNotFound is returned when a report does not exist
var ErrNotFound = errors.New("report not found")

// ReportSummary is a report without its snapshot and findings
type ReportSummary struct {
	ID           string                `json:"id" yaml:"id"`
	Target       string                `json:"target" yaml:"target"`
	CollectedAt  time.Time             `json:"collected_at" yaml:"collected_at"`
	SettingCount int                   `json:"setting_count" yaml:"setting_count"`
	FindingCount int                   `json:"finding_count" yaml:"finding_count"`
	Highest      domain.SuspicionLevel `json:"highest,omitempty" yaml:"highest,omitempty"`
}

// Repository defines the interface for report persistence
type Repository interface {
	SaveReport(ctx context.Context, r *report.Report) error
	GetReport(ctx context.Context, id string) (*report.Report, error)
	ListReports(ctx context.Context, target string, limit int) ([]ReportSummary, error)
	DeleteReport(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
