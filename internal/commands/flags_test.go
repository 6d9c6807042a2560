package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFlags_Open(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		backend string
	}{
		{name: "memory", config: "storage:\n  backend: memory\n", backend: "memory"},
		{name: "jsonfile", config: "storage:\n  backend: jsonfile\n", backend: "jsonfile"},
		{name: "sqlite", config: "storage:\n  backend: sqlite\n  database: flags.db\n", backend: "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Flags{ConfigPath: writeConfig(t, tt.config), DataDir: t.TempDir()}
			require.NoError(t, f.Open(zerolog.Nop()))
			t.Cleanup(func() { _ = f.Close() })

			assert.Equal(t, tt.backend, f.Config.Storage.Backend)
			require.NotNil(t, f.Service)

			ctx := context.Background()
			_, err := f.Service.CreateProject(ctx, "bridge")
			require.NoError(t, err)

			got, err := f.Service.GetProject(ctx, "bridge")
			require.NoError(t, err)
			assert.Equal(t, "bridge", got.Name)

			require.NoError(t, f.Close())
			require.NoError(t, f.Close(), "closing twice is a no-op")
		})
	}
}

func TestFlags_OpenInvalidConfig(t *testing.T) {
	f := &Flags{ConfigPath: writeConfig(t, "storage:\n  backend: tape\n"), DataDir: t.TempDir()}

	err := f.Open(zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
	assert.Nil(t, f.Service)
	assert.NoError(t, f.Close())
}
