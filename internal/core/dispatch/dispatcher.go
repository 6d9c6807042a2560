// Package dispatch provides typed in-process message broadcasting.
//
// A Dispatcher delivers every message of one type to the listeners that are
// subscribed at the moment of dispatch. There is no history: listeners that
// subscribe later never see earlier messages.
package dispatch

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// streamBuffer is the channel capacity used by Stream.
const streamBuffer = 16

// Handler receives dispatched messages.
type Handler[M any] func(M)

type listener[M any] struct {
	id     uint64
	fn     Handler[M]
	active atomic.Bool
}

// Dispatcher broadcasts messages of type M to its subscribers.
type Dispatcher[M any] struct {
	log  zerolog.Logger
	name string

	mu        sync.RWMutex
	listeners []*listener[M]
	nextID    uint64
}

// New creates a Dispatcher for messages of type M.
func New[M any](log zerolog.Logger) *Dispatcher[M] {
	name := reflect.TypeFor[M]().String()
	return &Dispatcher[M]{
		log:  log.With().Str("type", name).Logger(),
		name: name,
	}
}

// Name returns the message type name.
func (d *Dispatcher[M]) Name() string {
	return d.name
}

// Subscribers returns the number of registered listeners.
func (d *Dispatcher[M]) Subscribers() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners)
}

// Subscribe registers fn. Listeners are called in registration order.
func (d *Dispatcher[M]) Subscribe(fn Handler[M]) *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	l := &listener[M]{id: d.nextID, fn: fn}
	l.active.Store(true)
	d.listeners = append(d.listeners, l)

	return &Subscription{remove: func() { d.remove(l) }}
}

func (d *Dispatcher[M]) remove(l *listener[M]) {
	d.mu.Lock()
	defer d.mu.Unlock()

	l.active.Store(false)
	for i, existing := range d.listeners {
		if existing.id == l.id {
			// Copy so snapshots taken by in-flight dispatches stay intact.
			next := make([]*listener[M], 0, len(d.listeners)-1)
			next = append(next, d.listeners[:i]...)
			next = append(next, d.listeners[i+1:]...)
			d.listeners = next
			return
		}
	}
}

// Dispatch delivers msg synchronously to every current subscriber. With no
// subscribers the message is dropped and a warning is logged.
func (d *Dispatcher[M]) Dispatch(msg M) {
	d.mu.RLock()
	snapshot := d.listeners
	d.mu.RUnlock()

	if len(snapshot) == 0 {
		d.log.Warn().Msg("message dispatched with no subscribers")
		return
	}

	for _, l := range snapshot {
		if l.active.Load() {
			l.fn(msg)
		}
	}
}

// DispatchContext behaves like Dispatch unless ctx is already done, in which
// case the message is dropped without delivery.
func (d *Dispatcher[M]) DispatchContext(ctx context.Context, msg M) {
	if ctx.Err() != nil {
		d.log.Debug().Err(ctx.Err()).Msg("dropping message for cancelled context")
		return
	}
	d.Dispatch(msg)
}

// Stream subscribes and returns the messages as a channel. The subscription
// is registered before Stream returns and is removed when ctx ends, after
// which the channel is closed. Once the buffer is full Dispatch blocks until
// the reader catches up or ctx ends, and subscribers registered after the
// stream wait with it. Stores rely on this: no message is ever dropped.
func (d *Dispatcher[M]) Stream(ctx context.Context) <-chan M {
	out := make(chan M, streamBuffer)

	var (
		mu     sync.Mutex
		closed bool
	)

	sub := d.Subscribe(func(msg M) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case out <- msg:
		case <-ctx.Done():
		}
	})

	go func() {
		<-ctx.Done()
		sub.Unsubscribe()

		mu.Lock()
		closed = true
		close(out)
		mu.Unlock()
	}()

	return out
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	once   sync.Once
	remove func()
}

// Unsubscribe removes the listener. It is safe to call more than once and
// from inside a handler.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.remove)
}
