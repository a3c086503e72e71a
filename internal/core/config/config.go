// Package config handles configuration loading and validation for spotcheck.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/spotcheck/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Engine    EngineConfig    `yaml:"engine"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	TUI       TUIConfig       `yaml:"tui"`
	DataDir   string          `yaml:"-"` // set by caller, not from config file
}

// DatabaseConfig holds SQLite connection pool settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	// BusyTimeout is the SQLite busy timeout in milliseconds.
	BusyTimeout int `yaml:"busy_timeout"`
}

// EngineConfig holds engine-wide settings shared by every zone.
type EngineConfig struct {
	// EventBufferSize is the event bus buffer; events beyond it drop.
	EventBufferSize int `yaml:"event_buffer_size"`

	// DefaultMaxTasks caps accepted detections per cycle for zones that
	// do not set their own cap. 0 = unlimited.
	DefaultMaxTasks int `yaml:"default_max_tasks"`
}

// SchedulerConfig holds the daemon's scheduling settings.
type SchedulerConfig struct {
	// InboxDir is where the built-in detection source looks for per-zone
	// JSON drop files. Relative paths resolve under the data directory.
	InboxDir string `yaml:"inbox_dir"`

	// DefaultFrequency is the reconciliation interval for zones created
	// without an explicit update frequency.
	DefaultFrequency Duration `yaml:"default_frequency"`

	// AdaptInterval is how often the threshold adaptor sweeps all zones.
	AdaptInterval Duration `yaml:"adapt_interval"`
}

// TUIConfig holds watch-view settings.
type TUIConfig struct {
	Theme        string   `yaml:"theme"`
	PollInterval Duration `yaml:"poll_interval"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
		Engine: EngineConfig{
			EventBufferSize: 64,
			DefaultMaxTasks: 10,
		},
		Scheduler: SchedulerConfig{
			InboxDir:         "inbox",
			DefaultFrequency: Duration(30 * time.Minute),
			AdaptInterval:    Duration(24 * time.Hour),
		},
		TUI: TUIConfig{
			Theme:        styles.DefaultTheme,
			PollInterval: Duration(2 * time.Second),
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}

	if c.Engine.EventBufferSize == 0 {
		c.Engine.EventBufferSize = defaults.Engine.EventBufferSize
	}

	if c.Scheduler.InboxDir == "" {
		c.Scheduler.InboxDir = defaults.Scheduler.InboxDir
	}
	if c.Scheduler.DefaultFrequency == 0 {
		c.Scheduler.DefaultFrequency = defaults.Scheduler.DefaultFrequency
	}
	if c.Scheduler.AdaptInterval == 0 {
		c.Scheduler.AdaptInterval = defaults.Scheduler.AdaptInterval
	}

	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.PollInterval == 0 {
		c.TUI.PollInterval = defaults.TUI.PollInterval
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	if c.Engine.EventBufferSize < 1 {
		return fmt.Errorf("engine.event_buffer_size must be at least 1")
	}
	if c.Engine.DefaultMaxTasks < 0 {
		return fmt.Errorf("engine.default_max_tasks cannot be negative")
	}

	if c.Scheduler.DefaultFrequency.D() < time.Minute {
		return fmt.Errorf("scheduler.default_frequency must be at least 1m")
	}
	if c.Scheduler.AdaptInterval.D() < time.Minute {
		return fmt.Errorf("scheduler.adapt_interval must be at least 1m")
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		return fmt.Errorf("tui.theme %q is not a known theme (have: %v)", c.TUI.Theme, styles.ThemeNames())
	}
	if c.TUI.PollInterval.D() < 100*time.Millisecond {
		return fmt.Errorf("tui.poll_interval must be at least 100ms")
	}

	return nil
}

// DatabaseFile returns the SQLite database path.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "spotcheck.db")
}

// InboxDir returns the absolute detection inbox directory.
func (c *Config) InboxDir() string {
	if filepath.IsAbs(c.Scheduler.InboxDir) {
		return c.Scheduler.InboxDir
	}
	return filepath.Join(c.DataDir, c.Scheduler.InboxDir)
}
