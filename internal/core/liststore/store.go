package liststore

import (
	"context"

	"github.com/hay-kot/workbench/internal/core/pipeline"
)

// Store folds an item stream into list snapshots and lets a toggle stream
// mark one item active.
type Store[T any, K comparable] struct {
	items   pipeline.Observable[T]
	toggles pipeline.Observable[K]
	key     func(T) K
}

// New creates a Store. key identifies items; toggles carry the key of the
// item to toggle.
func New[T any, K comparable](items pipeline.Observable[T], toggles pipeline.Observable[K], key func(T) K) *Store[T, K] {
	return &Store[T, K]{
		items:   items,
		toggles: toggles,
		key:     key,
	}
}

// CreateStore implements pipeline.Factory.
//
// Adds and toggles are folded in dispatch order by a single Scan, so a toggle
// always applies to the list that includes every item added before it. Every
// add emits a snapshot, and so does every toggle once the list has items.
// Toggles that arrive while the list is empty are dropped. Both streams are
// subscribed before CreateStore returns.
func (s *Store[T, K]) CreateStore(ctx context.Context) <-chan State[T] {
	// The items stream is merged as is; a mapped copy would hide buffered
	// items from MergeOrdered and lose the add-before-toggle order.
	events := pipeline.MergeOrdered(ctx, s.items.Stream(ctx), s.toggles.Stream(ctx))

	seen := false
	events = pipeline.Filter(ctx, events, func(e pipeline.Either[T, K]) bool {
		if e.IsFirst {
			seen = true
		}
		return seen
	})

	return pipeline.Scan(ctx, events, State[T]{}, func(st State[T], e pipeline.Either[T, K]) State[T] {
		if e.IsFirst {
			return st.Append(e.First)
		}
		return Toggle(st, e.Second, s.key)
	})
}
