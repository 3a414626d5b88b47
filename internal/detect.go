package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user data and config directories
const AppName = "research-session"

// StoragePaths holds the resolved locations used by the client
type StoragePaths struct {
	DataDir  string // session store and caches
	CacheDir string // news cache
}

// DetectStoragePaths resolves the data directory for the current OS
func DetectStoragePaths() (StoragePaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return StoragePaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var dataDir string
	switch runtime.GOOS {
	case "darwin":
		dataDir = filepath.Join(home, "Library/Application Support", AppName)
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" && filepath.IsAbs(xdg) {
			dataDir = filepath.Join(xdg, AppName)
		} else {
			dataDir = filepath.Join(home, ".local/share", AppName)
		}
	default:
		return StoragePaths{}, fmt.Errorf("unsupported OS: %s (only macOS and Linux are supported)", runtime.GOOS)
	}

	return NewStoragePaths(dataDir), nil
}

// NewStoragePaths lays out paths under an explicit data directory
func NewStoragePaths(dataDir string) StoragePaths {
	return StoragePaths{
		DataDir:  dataDir,
		CacheDir: filepath.Join(dataDir, "cache"),
	}
}

// GetDatabasePath returns the SQLite store path
func (sp StoragePaths) GetDatabasePath() string {
	return filepath.Join(sp.DataDir, "sessions.db")
}

// GetPebblePath returns the Pebble store directory
func (sp StoragePaths) GetPebblePath() string {
	return filepath.Join(sp.DataDir, "pebble")
}

// DataDirExists checks if the data directory exists
func (sp StoragePaths) DataDirExists() bool {
	info, err := os.Stat(sp.DataDir)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// DefaultConfigPath returns ~/.research-session/config.yaml
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "."+AppName, "config.yaml")
}
