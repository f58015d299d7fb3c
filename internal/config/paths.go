package config

import (
	"os"
	"path/filepath"
)

const (
	// AppName names config and data directories.
	AppName = "stylegraph"
	// EnvConfigPath is the environment variable for an explicit config path.
	EnvConfigPath = "STYLEGRAPH_CONFIG"
	// FileName is the config file looked up in the working directory.
	FileName = "stylegraph.toml"
)

// FindPath returns the first config file that exists, or "".
func FindPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}

	if fileExists(FileName) {
		if abs, err := filepath.Abs(FileName); err == nil {
			return abs
		}
		return FileName
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if path := filepath.Join(xdg, AppName, "config.toml"); fileExists(path) {
			return path
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if path := filepath.Join(home, ".config", AppName, "config.toml"); fileExists(path) {
			return path
		}
	}
	return ""
}

// DefaultPath is where `stylegraph config init` writes a new file.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, "config.toml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", AppName, "config.toml")
	}
	return FileName
}

// DataDir returns the snapshot directory (~/.local/share/stylegraph).
func DataDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, AppName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", AppName)
	}
	return filepath.Join(".", "."+AppName)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
