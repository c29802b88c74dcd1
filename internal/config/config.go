// Package config provides configuration management for devtriage.
//
// The config file lists the devices to triage and how to reach them, plus
// where reports are stored and which extra audit rules to load. Secrets are
// never stored in the file itself: targets reference key files and
// environment variables, and a .env file next to the working directory is
// loaded into the environment first.
//
// Config file locations (priority order):
//  1. $DEVTRIAGE_CONFIG
//  2. ./devtriage.yaml
//  3. ~/.config/devtriage/config.yaml
//  4. /etc/devtriage/config.yaml
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultDatabasePath   = "./devtriage.db"
	defaultFormat         = "text"
	defaultConnectTimeout = 10 * time.Second
	defaultCommandTimeout = 30 * time.Second
	defaultSSHPort        = 22
	defaultADBPath        = "adb"
	defaultDiscoveryPorts = "22,5555"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath
	}
	if c.Output.Format == "" {
		c.Output.Format = defaultFormat
	}
	if c.Timeouts.Connect == 0 {
		c.Timeouts.Connect = Duration(defaultConnectTimeout)
	}
	if c.Timeouts.Command == 0 {
		c.Timeouts.Command = Duration(defaultCommandTimeout)
	}
	if c.Discovery.Ports == "" {
		c.Discovery.Ports = defaultDiscoveryPorts
	}

	for i := range c.Targets {
		t := &c.Targets[i]
		if t.Transport == "" {
			t.Transport = TransportSSH
		}
		switch t.Transport {
		case TransportSSH:
			if t.Port == 0 {
				t.Port = defaultSSHPort
			}
		case TransportADB:
			if t.ADBPath == "" {
				t.ADBPath = defaultADBPath
			}
		}
	}
}

// Validate checks targets and output settings
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q", c.Output.Format)
	}

	seen := make(map[string]bool, len(c.Targets))
	for _, t := range c.Targets {
		if t.Name == "" {
			return fmt.Errorf("target without a name")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate target %q", t.Name)
		}
		seen[t.Name] = true

		if err := t.Validate(); err != nil {
			return fmt.Errorf("target %q: %w", t.Name, err)
		}
	}
	return nil
}

// Validate checks the fields required by the target's transport
func (t Target) Validate() error {
	switch t.Transport {
	case TransportSSH:
		if t.Host == "" {
			return fmt.Errorf("ssh target requires host")
		}
		if t.User == "" {
			return fmt.Errorf("ssh target requires user")
		}
		if t.KeyPath == "" && t.PasswordEnv == "" {
			return fmt.Errorf("ssh target requires key_path or password_env")
		}
		if t.Port < 1 || t.Port > 65535 {
			return fmt.Errorf("invalid port %d", t.Port)
		}
	case TransportADB:
	default:
		return fmt.Errorf("unsupported transport %q", t.Transport)
	}
	return nil
}

// Target returns the configured target with the given name
func (c *Config) Target(name string) (Target, error) {
	for _, t := range c.Targets {
		if t.Name == name {
			return t, nil
		}
	}
	if len(c.Targets) == 0 {
		return Target{}, fmt.Errorf("target %q not found: no targets configured", name)
	}
	names := make([]string, len(c.Targets))
	for i, t := range c.Targets {
		names[i] = t.Name
	}
	return Target{}, fmt.Errorf("target %q not found (known: %s)", name, strings.Join(names, ", "))
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Database: %s, Format: %s\n", c.Database.Path, c.Output.Format)
	summary += fmt.Sprintf("Timeouts: connect %s, command %s\n",
		c.Timeouts.Connect.Duration(), c.Timeouts.Command.Duration())
	if c.Rules.Path != "" {
		summary += fmt.Sprintf("Rules: %s (watch=%v)\n", c.Rules.Path, c.Rules.Watch)
	}
	summary += fmt.Sprintf("Targets (%d):", len(c.Targets))
	for _, t := range c.Targets {
		summary += fmt.Sprintf(" %s[%s]", t.Name, t.Transport)
	}
	return summary
}
