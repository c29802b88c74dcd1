package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"devtriage/internal/domain"
	"devtriage/internal/report"
)

func newAuditFileCmd(a *app) *cobra.Command {
	var opts auditOptions

	cmd := &cobra.Command{
		Use:   "audit-file <path>",
		Short: "Audit a snapshot or report exported earlier",
		Long: "Audits the snapshot in a JSON or YAML file without contacting a device.\n" +
			"Accepts the output of 'dump --format json|yaml' or a saved report.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := opts.threshold(); err != nil {
				return err
			}
			target, snapshot, err := loadSnapshotFile(args[0])
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}
			rep := report.New(target, snapshot, engine.AuditSnapshot(snapshot))
			return a.emit(cmd, rep, opts)
		},
	}

	opts.register(cmd)
	return cmd
}

// loadSnapshotFile reads a snapshot, or the snapshot inside a report, from a
// .json, .yaml or .yml file. The target defaults to the file name.
func loadSnapshotFile(path string) (string, domain.Snapshot, error) {
	importer, err := report.ImporterFor(path)
	if err != nil {
		return "", nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	target, snapshot, err := importer.ParseSnapshot(f)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	if target == "" {
		target = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return target, snapshot, nil
}
