package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"devtriage/internal/audit"
	"devtriage/internal/domain"
	"devtriage/internal/dumper"
	"devtriage/internal/report"
	"devtriage/internal/watcher"
)

// auditOptions are shared by audit and audit-file
type auditOptions struct {
	save   bool
	failOn string
}

func (o *auditOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.save, "save", false, "store the report in the database")
	cmd.Flags().StringVar(&o.failOn, "fail-on", "", "exit with status 2 when a finding at or above this level exists (good, low, medium, high)")
}

func (o *auditOptions) threshold() (domain.SuspicionLevel, bool, error) {
	if o.failOn == "" {
		return 0, false, nil
	}
	level, err := domain.ParseSuspicionLevel(o.failOn)
	if err != nil {
		return 0, false, fmt.Errorf("--fail-on: %w", err)
	}
	return level, true, nil
}

func newAuditCmd(a *app) *cobra.Command {
	var (
		target     string
		watchRules bool
		interval   time.Duration
		opts       auditOptions
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Dump a device and audit its settings",
		Long: "Dumps the settings of a configured target, audits them against the rule table\n" +
			"and prints the report. With --watch-rules the audit repeats every --interval\n" +
			"and the rule file is reloaded whenever it changes.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := opts.threshold(); err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if !watchRules {
				return a.auditOnce(ctx, cmd, engine, target, opts)
			}

			cfg, err := a.config()
			if err != nil {
				return err
			}
			if cfg.Rules.Path == "" {
				return fmt.Errorf("--watch-rules needs rules.path in the config")
			}
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive")
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				if err := watcher.WatchRules(ctx, engine, cfg.Rules.Path); err != nil && ctx.Err() == nil {
					log.Printf("CLI: Warning: rule watcher stopped: %v", err)
				}
			}()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				if err := a.auditOnce(ctx, cmd, engine, target, opts); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "configured target name")
	cmd.Flags().BoolVar(&watchRules, "watch-rules", false, "re-audit on an interval and reload the rule file when it changes")
	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "time between audits with --watch-rules")
	opts.register(cmd)
	return cmd
}

// auditOnce dumps the target, audits the snapshot and emits the report
func (a *app) auditOnce(ctx context.Context, cmd *cobra.Command, engine *audit.Engine, target string, opts auditOptions) error {
	conn, err := a.connect(ctx, target)
	if err != nil {
		return err
	}
	defer conn.Close()

	snapshot, err := dumper.Dump(ctx, conn)
	if err != nil {
		return err
	}

	rep := report.New(target, snapshot, engine.AuditSnapshot(snapshot))
	return a.emit(cmd, rep, opts)
}

// emit prints a report, saves it if asked and applies --fail-on
func (a *app) emit(cmd *cobra.Command, rep *report.Report, opts auditOptions) error {
	format, err := a.outputFormat()
	if err != nil {
		return err
	}
	exporter, err := report.ExporterFor(format)
	if err != nil {
		return err
	}
	if err := exporter.Export(rep, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if opts.save {
		repo, err := a.repository()
		if err != nil {
			return err
		}
		defer repo.Close()
		if err := repo.SaveReport(cmd.Context(), rep); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		log.Printf("CLI: saved report %s", rep.ID)
	}

	threshold, ok, err := opts.threshold()
	if err != nil {
		return err
	}
	if ok && rep.Exceeds(threshold) {
		return &exitError{
			code: 2,
			err:  fmt.Errorf("findings at or above %s", threshold),
		}
	}
	return nil
}
