// Package config handles configuration loading and validation for workbench.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backend names.
const (
	BackendMemory   = "memory"
	BackendJSONFile = "jsonfile"
	BackendSQLite   = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	TUI      TUIConfig      `yaml:"tui"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Database is the SQLite file name, relative to the data directory.
	Database string `yaml:"database"`
}

// DispatchConfig tunes request/reply messaging.
type DispatchConfig struct {
	ReplyTimeout time.Duration `yaml:"reply_timeout"`
}

// TUIConfig holds interface preferences.
type TUIConfig struct {
	ShowHelp bool `yaml:"show_help"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend:  BackendJSONFile,
			Database: "workbench.db",
		},
		Dispatch: DispatchConfig{
			ReplyTimeout: 10 * time.Second,
		},
		TUI: TUIConfig{
			ShowHelp: true,
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
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Storage.Database == "" {
		c.Storage.Database = defaults.Storage.Database
	}
	if c.Dispatch.ReplyTimeout == 0 {
		c.Dispatch.ReplyTimeout = defaults.Dispatch.ReplyTimeout
	}
}

// DatabasePath returns the path to the SQLite database.
func (c *Config) DatabasePath() string {
	if filepath.IsAbs(c.Storage.Database) {
		return c.Storage.Database
	}
	return filepath.Join(c.DataDir, c.Storage.Database)
}

// CollectionsDir returns the directory holding jsonfile collections.
func (c *Config) CollectionsDir() string {
	return filepath.Join(c.DataDir, "collections")
}
