// Package memory provides an in-process storage backend for tests and
// ephemeral sessions.
package memory

import (
	"context"
	"sync"

	"github.com/hay-kot/workbench/internal/core/cursor"
)

// Backend keeps collections of T in memory. It is safe for concurrent use.
type Backend[T any] struct {
	mu          sync.RWMutex
	collections map[string][]T
}

// New creates an empty Backend.
func New[T any]() *Backend[T] {
	return &Backend[T]{collections: make(map[string][]T)}
}

// Seed replaces the contents of collection.
func (b *Backend[T]) Seed(collection string, items ...T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.collections[collection] = append([]T(nil), items...)
}

// Insert appends v to collection.
func (b *Backend[T]) Insert(_ context.Context, collection string, v T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.collections[collection] = append(b.collections[collection], v)
	return nil
}

// Open replays a snapshot of collection into sink from a new goroutine.
// Items inserted after Open are not part of the pass.
func (b *Backend[T]) Open(ctx context.Context, collection string, sink cursor.Sink[T]) (cursor.Handle, error) {
	b.mu.RLock()
	snapshot := append([]T(nil), b.collections[collection]...)
	b.mu.RUnlock()

	stop := make(chan struct{})
	var once sync.Once

	go func() {
		for _, v := range snapshot {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				sink.Fail(ctx.Err())
				return
			default:
			}
			sink.Yield(v)
		}
		sink.Exhausted()
	}()

	return cursor.HandleFunc(func() error {
		once.Do(func() { close(stop) })
		return nil
	}), nil
}
