// Package jsonfile provides a JSON file-based storage backend. Each
// collection is stored as <dir>/<collection>.json.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/hay-kot/workbench/internal/core/cursor"
)

// CollectionFile is the root JSON structure stored on disk.
type CollectionFile[T any] struct {
	Items []T `json:"items"`
}

// Store implements repository.Backend using one JSON file per collection.
// File locks coordinate concurrent processes; mu coordinates goroutines.
type Store[T any] struct {
	dir string
	mu  sync.RWMutex
}

// New creates a Store rooted at dir.
func New[T any](dir string) *Store[T] {
	return &Store[T]{dir: dir}
}

// Path returns the file backing collection.
func (s *Store[T]) Path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *Store[T]) lockPath(collection string) string {
	return s.Path(collection) + ".lock"
}

// withFileLock acquires a file lock, executes fn, then releases the lock.
func (s *Store[T]) withFileLock(collection string, lockType int, fn func() error) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(collection), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := syscall.Flock(int(f.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck

	return fn()
}

// Insert appends v to collection.
func (s *Store[T]) Insert(_ context.Context, collection string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withFileLock(collection, syscall.LOCK_EX, func() error {
		file, err := s.load(collection)
		if err != nil {
			return err
		}
		file.Items = append(file.Items, v)
		return s.save(collection, file)
	})
}

// Open streams collection into sink from a new goroutine. Items are decoded
// one at a time, so a malformed entry fails the cursor after the preceding
// items were delivered.
func (s *Store[T]) Open(ctx context.Context, collection string, sink cursor.Sink[T]) (cursor.Handle, error) {
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		s.mu.RLock()
		defer s.mu.RUnlock()

		err := s.withFileLock(collection, syscall.LOCK_SH, func() error {
			return s.stream(ctx, collection, stop, sink)
		})

		switch {
		case errors.Is(err, errStopped):
		case err != nil:
			sink.Fail(err)
		default:
			sink.Exhausted()
		}
	}()

	return cursor.HandleFunc(func() error {
		once.Do(func() { close(stop) })
		return nil
	}), nil
}

var errStopped = errors.New("cursor closed")

// stream decodes the items array token by token.
func (s *Store[T]) stream(ctx context.Context, collection string, stop <-chan struct{}, sink cursor.Sink[T]) error {
	f, err := os.Open(s.Path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", collection, err)
	}
	defer f.Close() //nolint:errcheck

	dec := json.NewDecoder(f)

	if err := seekItems(dec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse %s: %w", collection, err)
	}

	for dec.More() {
		select {
		case <-stop:
			return errStopped
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var v T
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("parse %s item: %w", collection, err)
		}
		sink.Yield(v)
	}
	return nil
}

// seekItems advances dec to the first element of the "items" array.
// io.EOF means the file holds no items.
func seekItems(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if key, _ := tok.(string); key == "items" {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			if tok == nil {
				return io.EOF
			}
			if d, ok := tok.(json.Delim); !ok || d != '[' {
				return fmt.Errorf("expected items array, got %v", tok)
			}
			return nil
		}

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return err
		}
	}
	return io.EOF
}

// load reads the collection file from disk.
// Returns an empty file if it doesn't exist.
func (s *Store[T]) load(collection string) (CollectionFile[T], error) {
	data, err := os.ReadFile(s.Path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return CollectionFile[T]{}, nil
		}
		return CollectionFile[T]{}, fmt.Errorf("read %s: %w", collection, err)
	}

	if len(data) == 0 {
		return CollectionFile[T]{}, nil
	}

	var file CollectionFile[T]
	if err := json.Unmarshal(data, &file); err != nil {
		return CollectionFile[T]{}, fmt.Errorf("parse %s: %w", collection, err)
	}
	return file, nil
}

// save writes the collection file to disk atomically.
func (s *Store[T]) save(collection string, file CollectionFile[T]) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", collection, err)
	}

	path := s.Path(collection)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
