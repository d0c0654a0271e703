// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "checkcard"

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

// XDGStateHome returns the XDG state home or a default fallback.
func XDGStateHome() string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "state")
}

// XDGCacheHome returns the XDG cache home or a default fallback.
func XDGCacheHome() string {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".cache")
}

// DefaultStorePath returns the default location for the given store driver.
// SQLite uses a single file, Badger a directory.
func DefaultStorePath(driver string) string {
	if driver == "badger" {
		return filepath.Join(XDGDataHome(), appName, "badger")
	}
	return filepath.Join(XDGDataHome(), appName, "checkcard.db")
}

// DefaultLogPath returns the default application log file.
func DefaultLogPath() string {
	return filepath.Join(XDGStateHome(), appName, "checkcard.log")
}

// DefaultRepoCacheDir returns where git deck sources are cloned.
func DefaultRepoCacheDir() string {
	return filepath.Join(XDGCacheHome(), appName, "repos")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}
