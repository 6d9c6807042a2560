package dispatch

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Registry maps message types to their process-wide Dispatcher. Message
// types are registered explicitly at start-up.
type Registry struct {
	log zerolog.Logger

	mu          sync.RWMutex
	dispatchers map[reflect.Type]any
}

// NewRegistry creates an empty Registry. Dispatchers it creates inherit log.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		log:         log,
		dispatchers: make(map[reflect.Type]any),
	}
}

// Register returns the Dispatcher for M, creating it on first use.
func Register[M any](r *Registry) *Dispatcher[M] {
	key := reflect.TypeFor[M]()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.dispatchers[key]; ok {
		return existing.(*Dispatcher[M])
	}

	d := New[M](r.log)
	r.dispatchers[key] = d
	return d
}

// Lookup returns the Dispatcher registered for M.
func Lookup[M any](r *Registry) (*Dispatcher[M], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.dispatchers[reflect.TypeFor[M]()]
	if !ok {
		return nil, false
	}
	return d.(*Dispatcher[M]), true
}

// MustLookup is like Lookup but panics when M was never registered.
func MustLookup[M any](r *Registry) *Dispatcher[M] {
	d, ok := Lookup[M](r)
	if !ok {
		panic(fmt.Sprintf("dispatch: no dispatcher registered for %s", reflect.TypeFor[M]()))
	}
	return d
}

// Types returns the registered message type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.dispatchers))
	for t := range r.dispatchers {
		names = append(names, t.String())
	}
	sort.Strings(names)
	return names
}
