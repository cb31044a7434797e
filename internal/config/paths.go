package config

import (
	"os"
	"path/filepath"
)

// Environment overrides for the on-disk locations.
const (
	EnvHome    = "DOPESHEET_HOME"
	EnvJournal = "DOPESHEET_JOURNAL"
)

// DataDir returns the directory used to store dopesheet data.
func DataDir() (string, error) {
	if d := os.Getenv(EnvHome); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	// Use a dot-directory in the user's home on all platforms
	return filepath.Join(home, ".dopesheet"), nil
}

// EnsureDataDir creates the data directory when missing and returns it.
func EnsureDataDir() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", err
	}
	return d, nil
}

// JournalPath returns the full path to the SQLite command journal.
func JournalPath() (string, error) {
	if p := os.Getenv(EnvJournal); p != "" {
		return p, nil
	}
	return inDataDir("journal.db")
}

// LogPath returns the log file used while the terminal UI owns the screen.
func LogPath() (string, error) { return inDataDir("dopesheet.log") }

// ConfigPath returns the settings file location.
func ConfigPath() (string, error) { return inDataDir("config.yaml") }

func inDataDir(name string) (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, name), nil
}
