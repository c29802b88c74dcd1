package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version"`
	Database  DatabaseConfig  `yaml:"database"`
	Rules     RulesConfig     `yaml:"rules"`
	Output    OutputConfig    `yaml:"output"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	Targets   []Target        `yaml:"targets,omitempty"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RulesConfig points at an optional audit rule file
type RulesConfig struct {
	Path  string `yaml:"path,omitempty"`
	Watch bool   `yaml:"watch"` // reload the rule file when it changes
}

// OutputConfig holds report rendering settings
type OutputConfig struct {
	Format string `yaml:"format"` // text, json, yaml
}

// TimeoutConfig bounds device communication
type TimeoutConfig struct {
	Connect Duration `yaml:"connect"`
	Command Duration `yaml:"command"`
}

// Transport selects how a target is reached
type Transport string

const (
	TransportSSH Transport = "ssh"
	TransportADB Transport = "adb"
)

// Target describes one device to triage.
// Secret material is referenced by file path or environment variable, never inlined.
type Target struct {
	Name      string    `yaml:"name"`
	Transport Transport `yaml:"transport"`

	// SSH
	Host           string `yaml:"host,omitempty"`
	Port           int    `yaml:"port,omitempty"`
	User           string `yaml:"user,omitempty"`
	KeyPath        string `yaml:"key_path,omitempty"`
	PassphraseEnv  string `yaml:"passphrase_env,omitempty"`
	PasswordEnv    string `yaml:"password_env,omitempty"`
	KnownHostsPath string `yaml:"known_hosts,omitempty"`

	// ADB
	Serial  string `yaml:"serial,omitempty"`
	ADBPath string `yaml:"adb_path,omitempty"`
}

// DiscoveryConfig holds nmap discovery settings
type DiscoveryConfig struct {
	Ports             string `yaml:"ports"`
	ServiceDetection  bool   `yaml:"service_detection"`
	SkipHostDiscovery bool   `yaml:"skip_host_discovery"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
