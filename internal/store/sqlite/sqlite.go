// Package sqlite provides a SQLite storage backend. Items are stored as CBOR
// documents in a single table keyed by collection.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hay-kot/workbench/internal/core/cursor"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// encMode uses Core Deterministic Encoding so equal items always produce
// identical bytes.
var encMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano

	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic("sqlite: CBOR encoder initialization failed: " + err.Error())
	}
}

// Open opens the database at path with sensible defaults and applies all
// pending migrations.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return db, nil
}

// Migrate applies the embedded up migrations to db.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}

	// m.Close would close db as well, so the migrator is dropped instead.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Store implements repository.Backend for items of type T.
type Store[T any] struct {
	db *sql.DB
}

// New creates a Store over db. The schema must already be migrated.
func New[T any](db *sql.DB) *Store[T] {
	return &Store[T]{db: db}
}

// Insert encodes v and appends it to collection.
func (s *Store[T]) Insert(ctx context.Context, collection string, v T) error {
	body, err := encMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, body) VALUES (?, ?)`,
		collection, body,
	)
	return err
}

// Open queries collection in insertion order and streams decoded rows into
// sink from a new goroutine.
func (s *Store[T]) Open(ctx context.Context, collection string, sink cursor.Sink[T]) (cursor.Handle, error) {
	ctx, cancel := context.WithCancel(ctx)

	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE collection = ? ORDER BY id`,
		collection,
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer rows.Close() //nolint:errcheck

		for rows.Next() {
			var body []byte
			if err := rows.Scan(&body); err != nil {
				sink.Fail(fmt.Errorf("scan %s: %w", collection, err))
				return
			}

			var v T
			if err := cbor.Unmarshal(body, &v); err != nil {
				sink.Fail(fmt.Errorf("decode %s item: %w", collection, err))
				return
			}
			sink.Yield(v)
		}

		if err := rows.Err(); err != nil {
			if ctx.Err() != nil {
				return
			}
			sink.Fail(fmt.Errorf("read %s: %w", collection, err))
			return
		}
		sink.Exhausted()
	}()

	var once sync.Once
	return cursor.HandleFunc(func() error {
		once.Do(func() {
			cancel()
			<-done
		})
		return nil
	}), nil
}
