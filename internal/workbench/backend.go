package workbench

import (
	"fmt"
	"io"
	"os"

	"github.com/hay-kot/workbench/internal/core/config"
	"github.com/hay-kot/workbench/internal/core/project"
	"github.com/hay-kot/workbench/internal/core/repository"
	"github.com/hay-kot/workbench/internal/store/jsonfile"
	"github.com/hay-kot/workbench/internal/store/memory"
	"github.com/hay-kot/workbench/internal/store/sqlite"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenBackend opens the project storage selected by cfg. The returned closer
// releases it.
func OpenBackend(cfg *config.Config) (repository.Backend[project.Project], io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.New[project.Project](), nopCloser{}, nil

	case config.BackendJSONFile:
		return jsonfile.New[project.Project](cfg.CollectionsDir()), nopCloser{}, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}
		db, err := sqlite.Open(cfg.DatabasePath())
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		return sqlite.New[project.Project](db), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
