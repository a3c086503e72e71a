package commands

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/spotcheck/internal/core/config"
	"github.com/colonyops/spotcheck/internal/spotcheck"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// App is populated in the Before hook with the wired service layer
	App *spotcheck.App
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "spotcheck", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "spotcheck")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/spotcheck/spotcheck.log
// On Linux: $XDG_STATE_HOME/spotcheck/spotcheck.log (defaults to ~/.local/state/spotcheck/spotcheck.log)
func DefaultLogFile() string {
	// Check XDG_STATE_HOME first (works on both macOS and Linux)
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "spotcheck", "spotcheck.log")
	}

	home, _ := os.UserHomeDir()

	// On macOS, use ~/Library/Logs
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "spotcheck", "spotcheck.log")
	}

	// On Linux, use ~/.local/state
	return filepath.Join(home, ".local", "state", "spotcheck", "spotcheck.log")
}
