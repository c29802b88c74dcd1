package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names the environment variable holding an explicit config path
	EnvConfigPath = "DEVTRIAGE_CONFIG"
	// ConfigFileName is the config file looked up in the working directory
	ConfigFileName = "devtriage.yaml"
	// ConfigDirName is the directory under the user and system config roots
	ConfigDirName = "devtriage"
)

// SearchPaths lists the config file locations in priority order:
//  1. $DEVTRIAGE_CONFIG (explicit path)
//  2. ./devtriage.yaml (working directory)
//  3. $XDG_CONFIG_HOME/devtriage/config.yaml
//  4. ~/.config/devtriage/config.yaml
//  5. /etc/devtriage/config.yaml
//
// Entries whose environment variable is unset are omitted.
func SearchPaths() []string {
	var paths []string

	// 1. Explicit environment variable
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}

	// 2. Working directory
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths = append(paths, abs)
	} else {
		paths = append(paths, ConfigFileName)
	}

	// 3. XDG config home, 4. default XDG location
	paths = append(paths, userConfigPaths()...)

	// 5. System-wide
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// userConfigPaths returns the per-user locations, most specific first
func userConfigPaths() []string {
	var paths []string
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, ConfigDirName, "config.yaml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	return paths
}

// FindConfigPath returns the first existing entry of SearchPaths, or an empty
// string if there is none
func FindConfigPath() string {
	for _, p := range SearchPaths() {
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// DefaultConfigPath returns where `config init` writes a new file: the first
// per-user location, or the working directory without a home
func DefaultConfigPath() string {
	if paths := userConfigPaths(); len(paths) > 0 {
		return paths[0]
	}
	return ConfigFileName
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
