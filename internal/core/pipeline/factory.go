package pipeline

import (
	"context"
	"reflect"
	"sort"
	"sync"
)

// Factory creates live state streams. Every call to CreateStore builds an
// independent pipeline; nothing is shared between callers.
type Factory[S any] interface {
	CreateStore(ctx context.Context) <-chan S
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc[S any] func(ctx context.Context) <-chan S

// CreateStore implements Factory.
func (f FactoryFunc[S]) CreateStore(ctx context.Context) <-chan S {
	return f(ctx)
}

// Factories maps state types to the Factory that produces them.
type Factories struct {
	mu        sync.RWMutex
	factories map[reflect.Type]any
}

// NewFactories creates an empty table.
func NewFactories() *Factories {
	return &Factories{factories: make(map[reflect.Type]any)}
}

// RegisterFactory binds f as the Factory for S, replacing any earlier binding.
func RegisterFactory[S any](r *Factories, f Factory[S]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[reflect.TypeFor[S]()] = f
}

// FactoryFor returns the Factory bound to S.
func FactoryFor[S any](r *Factories) (Factory[S], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[reflect.TypeFor[S]()]
	if !ok {
		return nil, false
	}
	return f.(Factory[S]), true
}

// Types returns the bound state type names, sorted.
func (r *Factories) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for t := range r.factories {
		names = append(names, t.String())
	}
	sort.Strings(names)
	return names
}
