// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

// DefaultDataDir is where trajectory records are written, relative to the
// working directory.
const DefaultDataDir = "data/raw/trajectories"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultCatalogPath returns the default path for the SQLite trial catalog.
func DefaultCatalogPath() string {
	return filepath.Join(XDGDataHome(), "pursuit", "catalog.db")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "pursuit", "config.toml")
}
