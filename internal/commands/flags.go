package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/hay-kot/workbench/internal/core/config"
	"github.com/hay-kot/workbench/internal/workbench"
)

// Flags holds the global flags and the state the root Before hook builds
// from them: the loaded config, the storage backend it names and the service
// running on top of that backend.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded by Open and available to all commands
	Config *config.Config

	// Service is the workbench service over the configured backend
	Service *workbench.Service

	backend io.Closer
}

// Open loads the config from ConfigPath, opens the storage backend it selects
// under DataDir and builds the Service.
func (f *Flags) Open(log zerolog.Logger) error {
	cfg, err := config.Load(f.ConfigPath, f.DataDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	backend, closer, err := workbench.OpenBackend(cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	f.Config = cfg
	f.backend = closer
	f.Service = workbench.New(
		backend,
		cfg.Dispatch.ReplyTimeout,
		log.With().Str("backend", cfg.Storage.Backend).Logger(),
	)
	return nil
}

// Close releases the storage backend. It is a no-op before Open.
func (f *Flags) Close() error {
	if f.backend == nil {
		return nil
	}
	err := f.backend.Close()
	f.backend = nil
	return err
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "workbench", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "workbench")
}
