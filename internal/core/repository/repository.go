// Package repository exposes typed find/get operations over a cursor.Source.
package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/hay-kot/workbench/internal/core/cursor"
	"github.com/hay-kot/workbench/pkg/randid"
)

// Sentinel errors for single-result queries.
var (
	ErrCardinality = errors.New("expected exactly one matching item")
	ErrNotFound    = fmt.Errorf("%w: none matched", ErrCardinality)
	ErrNotUnique   = fmt.Errorf("%w: more than one matched", ErrCardinality)
)

// Backend is a storage collaborator: a cursor source that can also store
// new items.
type Backend[T any] interface {
	cursor.Source[T]
	Insert(ctx context.Context, collection string, v T) error
}

// matches reports whether v passes filter. A nil filter matches everything.
func matches[T any](filter func(T) bool, v T) bool {
	return filter == nil || filter(v)
}

// CollectionName returns the default collection name for T: its type name
// with an "s" suffix.
func CollectionName[T any]() string {
	return reflect.TypeFor[T]().Name() + "s"
}

// Repository reads and writes items of type T in one collection.
type Repository[T any] struct {
	backend    Backend[T]
	collection string
	log        zerolog.Logger
}

// New creates a Repository over collection.
func New[T any](backend Backend[T], collection string, log zerolog.Logger) *Repository[T] {
	return &Repository[T]{
		backend:    backend,
		collection: collection,
		log:        log.With().Str("collection", collection).Logger(),
	}
}

// Collection returns the collection name.
func (r *Repository[T]) Collection() string {
	return r.collection
}

// Find iterates the items matching filter. Each iteration opens its own
// cursor, which is closed when the loop ends or the source is exhausted.
// Source errors are yielded unchanged as the final pair, and so is ctx.Err()
// when ctx ends before the cursor is exhausted.
func (r *Repository[T]) Find(ctx context.Context, filter func(T) bool) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		if err := ctx.Err(); err != nil {
			yield(zero, err)
			return
		}

		sess := cursor.NewSession[T]()
		id := randid.New()

		handle, err := r.backend.Open(ctx, r.collection, sess)
		if err != nil {
			yield(zero, err)
			return
		}
		r.log.Debug().Str("cursor", id).Msg("cursor opened")

		defer func() {
			sess.Cancel()
			if err := handle.Close(); err != nil {
				r.log.Warn().Err(err).Str("cursor", id).Msg("closing cursor")
			}
			r.log.Debug().Str("cursor", id).Stringer("state", sess.State()).Msg("cursor closed")
		}()

		for v, err := range sess.All(ctx) {
			if err != nil {
				yield(zero, err)
				return
			}
			if !matches(filter, v) {
				continue
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// List collects every item matching filter.
func (r *Repository[T]) List(ctx context.Context, filter func(T) bool) ([]T, error) {
	var out []T
	for v, err := range r.Find(ctx, filter) {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Get returns the single item matching filter. Zero matches return
// ErrNotFound and more than one ErrNotUnique; both match ErrCardinality. A
// source error or the end of ctx is returned as is.
func (r *Repository[T]) Get(ctx context.Context, filter func(T) bool) (T, error) {
	var (
		zero  T
		found T
		count int
	)

	for v, err := range r.Find(ctx, filter) {
		if err != nil {
			return zero, err
		}
		count++
		if count > 1 {
			return zero, ErrNotUnique
		}
		found = v
	}

	if count == 0 {
		return zero, ErrNotFound
	}
	return found, nil
}

// Add stores v in the collection.
func (r *Repository[T]) Add(ctx context.Context, v T) error {
	if err := r.backend.Insert(ctx, r.collection, v); err != nil {
		return fmt.Errorf("insert into %s: %w", r.collection, err)
	}
	return nil
}
