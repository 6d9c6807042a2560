package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	require.NoError(t, err)

	assert.Equal(t, BackendJSONFile, cfg.Storage.Backend)
	assert.Equal(t, 10*time.Second, cfg.Dispatch.ReplyTimeout)
	assert.True(t, cfg.TUI.ShowHelp)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "workbench.db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join(dataDir, "collections"), cfg.CollectionsDir())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Storage, cfg.Storage)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: sqlite
  database: bench.db
dispatch:
  reply_timeout: 250ms
tui:
  show_help: false
`)

	cfg, err := Load(path, "/var/lib/workbench")
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Dispatch.ReplyTimeout)
	assert.False(t, cfg.TUI.ShowHelp)
	assert.Equal(t, "/var/lib/workbench", cfg.DataDir)
	assert.Equal(t, "/var/lib/workbench/bench.db", cfg.DatabasePath())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: memory\n")

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "workbench.db", cfg.Storage.Database)
	assert.Equal(t, 10*time.Second, cfg.Dispatch.ReplyTimeout)
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "storage: [unterminated")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		wantFields []string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:       "empty data dir",
			mutate:     func(c *Config) { c.DataDir = "" },
			wantFields: []string{"data_dir"},
		},
		{
			name:       "unknown backend",
			mutate:     func(c *Config) { c.Storage.Backend = "postgres" },
			wantFields: []string{"storage.backend"},
		},
		{
			name: "nested database path",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendSQLite
				c.Storage.Database = "sub/dir.db"
			},
			wantFields: []string{"storage.database"},
		},
		{
			name: "several problems",
			mutate: func(c *Config) {
				c.DataDir = ""
				c.Dispatch.ReplyTimeout = -time.Second
			},
			wantFields: []string{"data_dir", "dispatch.reply_timeout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, len(tt.wantFields))
			for i, field := range tt.wantFields {
				assert.Equal(t, field, fieldErrs[i].Field)
			}
		})
	}
}

func TestLoad_InvalidWrapsFieldErrors(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: redis\n")

	_, err := Load(path, t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestInspect(t *testing.T) {
	t.Run("reports paths and storage", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DataDir = t.TempDir()

		checks, err := cfg.Inspect(filepath.Join(t.TempDir(), "config.yaml"))
		require.NoError(t, err)

		labels := make([]string, 0, len(checks))
		for _, c := range checks {
			assert.True(t, c.OK)
			labels = append(labels, c.Label)
		}
		assert.Equal(t, []string{"config file", "data directory", "storage", "reply timeout"}, labels)
	})

	t.Run("data dir is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "data")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		cfg := DefaultConfig()
		cfg.DataDir = file

		_, err := cfg.Inspect("")

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Equal(t, "data_dir", fieldErrs[0].Field)
	})
}
