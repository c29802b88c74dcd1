package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"devtriage/internal/domain"
	"devtriage/internal/report"
	"devtriage/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: databases intact
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

// dsn appends connection pragmas to a database path
func dsn(dbPath string) string {
	pragmas := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)"}
	if dbPath != ":memory:" {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + strings.Join(pragmas, "&")
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		collected_at TEXT NOT NULL,
		namespaces TEXT NOT NULL,
		setting_count INTEGER NOT NULL DEFAULT 0,
		finding_count INTEGER NOT NULL DEFAULT 0,
		highest TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		report_id TEXT NOT NULL,
		namespace TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (report_id, namespace, key),
		FOREIGN KEY (report_id) REFERENCES reports(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS findings (
		report_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		namespace TEXT,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		level TEXT NOT NULL,
		description TEXT NOT NULL,
		PRIMARY KEY (report_id, seq),
		FOREIGN KEY (report_id) REFERENCES reports(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_reports_target ON reports(target, collected_at);
	CREATE INDEX IF NOT EXISTS idx_findings_level ON findings(level);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveReport stores a report with its snapshot and findings in one transaction
func (r *Repository) SaveReport(ctx context.Context, rep *report.Report) error {
	if rep.ID == "" {
		return fmt.Errorf("report has no ID")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	highest, ok := rep.Highest()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports (id, target, collected_at, namespaces, setting_count, finding_count, highest)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rep.ID, rep.Target, formatTime(rep.CollectedAt), joinNamespaces(rep.Snapshot),
		rep.Snapshot.Len(), len(rep.Findings), levelToNull(highest, ok))
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	settingStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO settings (report_id, namespace, key, value) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare settings insert: %w", err)
	}
	defer settingStmt.Close()

	for _, ns := range rep.Snapshot.Namespaces() {
		settings := rep.Snapshot[ns]
		for _, key := range settings.Keys() {
			if _, err := settingStmt.ExecContext(ctx, rep.ID, string(ns), key, settings[key]); err != nil {
				return fmt.Errorf("failed to insert setting %s/%s: %w", ns, key, err)
			}
		}
	}

	findingStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO findings (report_id, seq, namespace, key, value, level, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare findings insert: %w", err)
	}
	defer findingStmt.Close()

	for i, f := range rep.Findings {
		if !f.Level.Valid() {
			return fmt.Errorf("finding %d has invalid level", i)
		}
		_, err := findingStmt.ExecContext(ctx, rep.ID, i, stringToNull(string(f.Namespace)),
			f.Key, f.Value, f.Level.String(), f.Description)
		if err != nil {
			return fmt.Errorf("failed to insert finding %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}

// GetReport loads a complete report
func (r *Repository) GetReport(ctx context.Context, id string) (*report.Report, error) {
	var (
		target, collectedAt, namespaces string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT target, collected_at, namespaces FROM reports WHERE id = ?
	`, id).Scan(&target, &collectedAt, &namespaces)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	rep := &report.Report{
		ID:       id,
		Target:   target,
		Snapshot: domain.NewSnapshot(),
		Findings: []domain.Finding{},
	}
	if rep.CollectedAt, err = parseTime(collectedAt); err != nil {
		return nil, err
	}

	present, err := splitNamespaces(namespaces)
	if err != nil {
		return nil, fmt.Errorf("corrupt report %s: %w", id, err)
	}
	for _, ns := range present {
		rep.Snapshot[ns] = domain.Settings{}
	}

	if err := r.loadSettings(ctx, rep); err != nil {
		return nil, err
	}
	if err := r.loadFindings(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *Repository) loadSettings(ctx context.Context, rep *report.Report) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT namespace, key, value FROM settings WHERE report_id = ?
	`, rep.ID)
	if err != nil {
		return fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ns, key, value string
		if err := rows.Scan(&ns, &key, &value); err != nil {
			return fmt.Errorf("failed to scan setting: %w", err)
		}
		settings, ok := rep.Snapshot[domain.Namespace(ns)]
		if !ok {
			return fmt.Errorf("corrupt report %s: setting in unrecorded namespace %q", rep.ID, ns)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating settings: %w", err)
	}
	return nil
}

func (r *Repository) loadFindings(ctx context.Context, rep *report.Report) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT namespace, key, value, level, description
		FROM findings WHERE report_id = ? ORDER BY seq
	`, rep.ID)
	if err != nil {
		return fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ns                      sql.NullString
			key, value, level, desc string
		)
		if err := rows.Scan(&ns, &key, &value, &level, &desc); err != nil {
			return fmt.Errorf("failed to scan finding: %w", err)
		}
		parsed, err := domain.ParseSuspicionLevel(level)
		if err != nil {
			return fmt.Errorf("corrupt finding in report %s: %w", rep.ID, err)
		}
		rep.Findings = append(rep.Findings, domain.Finding{
			Namespace: domain.Namespace(nullToString(ns)),
			Key:       key,
			Value:     value,
			Suspicion: domain.Suspicion{Level: parsed, Description: desc},
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating findings: %w", err)
	}
	return nil
}

// ListReports returns report summaries, newest first. An empty target lists
// all targets; limit <= 0 means no limit.
func (r *Repository) ListReports(ctx context.Context, target string, limit int) ([]repository.ReportSummary, error) {
	query := `
		SELECT id, target, collected_at, setting_count, finding_count, highest
		FROM reports`
	var args []interface{}
	if target != "" {
		query += ` WHERE target = ?`
		args = append(args, target)
	}
	query += ` ORDER BY collected_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	summaries := []repository.ReportSummary{}
	for rows.Next() {
		var (
			s           repository.ReportSummary
			collectedAt string
			highest     sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Target, &collectedAt, &s.SettingCount, &s.FindingCount, &highest); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		if s.CollectedAt, err = parseTime(collectedAt); err != nil {
			return nil, err
		}
		if s.Highest, err = nullToLevel(highest); err != nil {
			return nil, fmt.Errorf("corrupt report %s: %w", s.ID, err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return summaries, nil
}

// DeleteReport removes a report with its settings and findings
func (r *Repository) DeleteReport(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
