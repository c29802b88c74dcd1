// Package cli implements the devtriage command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"devtriage/internal/audit"
	"devtriage/internal/channel"
	"devtriage/internal/config"
	"devtriage/internal/repository/sqlite"
)

// app holds state shared by every command
type app struct {
	configPath string
	format     string
	quiet      bool

	cfg     *config.Config
	cfgPath string

	// open connects to a target; replaced in tests
	open func(ctx context.Context, target config.Target, timeouts config.TimeoutConfig) (channel.Conn, error)
}

// exitError carries a process exit code other than 1
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{open: channel.Open})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "devtriage",
		Short:         "Dump and audit Android device settings",
		Long:          "Connects to a device over ssh or adb, dumps the system, secure and global\nsettings namespaces, and flags settings that weaken Google Play Protect.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.quiet {
				log.SetOutput(io.Discard)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: search $DEVTRIAGE_CONFIG, ./devtriage.yaml, ~/.config/devtriage)")
	root.PersistentFlags().StringVarP(&a.format, "format", "o", "", "output format: text, json, yaml (default from config)")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress log output")

	root.AddCommand(
		newDumpCmd(a),
		newAuditCmd(a),
		newAuditFileCmd(a),
		newDiscoverCmd(a),
		newReportsCmd(a),
		newRulesCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := config.LoadEnv(); err != nil {
		log.Printf("CLI: Warning: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

// config loads the configuration once
func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	var (
		cfg  *config.Config
		path string
		err  error
	)
	if a.configPath != "" {
		cfg, path, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if path == "" {
		log.Printf("Config: no config file found, using defaults")
	} else {
		log.Printf("Config: loaded %s", path)
	}
	a.cfg, a.cfgPath = cfg, path
	return cfg, nil
}

// outputFormat is the --format flag, or the configured format
func (a *app) outputFormat() (string, error) {
	if a.format != "" {
		return a.format, nil
	}
	cfg, err := a.config()
	if err != nil {
		return "", err
	}
	return cfg.Output.Format, nil
}

// engine builds an audit engine with the built-in and configured rules
func (a *app) engine() (*audit.Engine, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	rules, err := audit.LoadRuleSet(cfg.Rules.Path)
	if err != nil {
		return nil, err
	}
	return audit.NewEngine(rules)
}

// repository opens the report database
func (a *app) repository() (*sqlite.Repository, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}
	return repo, nil
}

// connect opens a channel to the named target
func (a *app) connect(ctx context.Context, name string) (channel.Conn, error) {
	if name == "" {
		return nil, fmt.Errorf("--target is required")
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	target, err := cfg.Target(name)
	if err != nil {
		return nil, err
	}
	return a.open(ctx, target, cfg.Timeouts)
}
