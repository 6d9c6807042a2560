// Package cursor bridges push-style storage cursors into pull-style
// iteration.
//
// A storage backend drives a Sink from its own goroutine: Yield once per item
// and Exhausted exactly once at the end. A Session buffers those signals and
// lets a single consumer pull items one at a time with Next or All.
package cursor

import (
	"context"
	"iter"
	"sync"
)

// Sink receives the signals of one cursor pass.
type Sink[T any] interface {
	// Yield delivers the next item.
	Yield(v T)
	// Exhausted reports that no more items will follow.
	Exhausted()
	// Fail reports that iteration stopped because of err. It is terminal,
	// like Exhausted.
	Fail(err error)
}

// Handle tears down an open cursor.
type Handle interface {
	Close() error
}

// Source opens cursors over named collections. The source may call sink
// from any goroutine, before or after Open returns, until Close is called.
type Source[T any] interface {
	Open(ctx context.Context, collection string, sink Sink[T]) (Handle, error)
}

// HandleFunc adapts a function to Handle.
type HandleFunc func() error

// Close implements Handle.
func (f HandleFunc) Close() error {
	return f()
}

// State is the lifecycle state of a Session.
type State int

const (
	StateIdle State = iota
	StateDraining
	StateExhausted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDraining:
		return "draining"
	case StateExhausted:
		return "exhausted"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Session is a single-consumer, single-producer cursor pass. The zero value
// is not usable; create one with NewSession.
type Session[T any] struct {
	mu        sync.Mutex
	queue     []T
	exhausted bool
	err       error
	state     State

	// wake is closed to release a waiting consumer and replaced right after,
	// so each wait observes exactly one signal.
	wake chan struct{}
}

// NewSession creates an idle Session.
func NewSession[T any]() *Session[T] {
	return &Session[T]{wake: make(chan struct{})}
}

// notify releases the waiting consumer, if any, and re-arms the wait.
// Caller must hold s.mu.
func (s *Session[T]) notify() {
	close(s.wake)
	s.wake = make(chan struct{})
}

// terminal reports whether producer signals should be discarded.
// Caller must hold s.mu.
func (s *Session[T]) terminal() bool {
	return s.exhausted || s.state == StateCancelled
}

// Yield implements Sink. Items yielded after exhaustion or cancellation are
// discarded.
func (s *Session[T]) Yield(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminal() {
		return
	}
	s.queue = append(s.queue, v)
	s.notify()
}

// Exhausted implements Sink.
func (s *Session[T]) Exhausted() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminal() {
		return
	}
	s.exhausted = true
	s.notify()
}

// Fail implements Sink. Items queued before the failure are still delivered;
// the error is reported once they are drained.
func (s *Session[T]) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminal() {
		return
	}
	s.exhausted = true
	s.err = err
	s.notify()
}

// Cancel abandons the session. Queued items are dropped, a blocked Next
// returns and later producer signals are discarded.
func (s *Session[T]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCancelled || s.state == StateExhausted {
		return
	}
	s.state = StateCancelled
	s.queue = nil
	s.notify()
}

// State returns the current lifecycle state.
func (s *Session[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Next returns the next item. It blocks until the producer yields or the
// cursor ends. ok is false once the session is exhausted or cancelled; err is
// the failure reported by the producer, if any. Ending ctx cancels the
// session and Next returns ctx.Err(), so a consumer never mistakes an
// abandoned pass for an exhausted one.
func (s *Session[T]) Next(ctx context.Context) (v T, ok bool, err error) {
	for {
		if err := ctx.Err(); err != nil {
			s.Cancel()
			return v, false, err
		}

		s.mu.Lock()
		if s.state == StateIdle {
			s.state = StateDraining
		}

		switch {
		case s.state == StateCancelled:
			s.mu.Unlock()
			return v, false, nil
		case len(s.queue) > 0:
			v = s.queue[0]
			var zero T
			s.queue[0] = zero
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return v, true, nil
		case s.exhausted:
			s.state = StateExhausted
			err = s.err
			s.mu.Unlock()
			return v, false, err
		}

		wake := s.wake
		s.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			s.Cancel()
			return v, false, ctx.Err()
		}
	}
}

// All returns an iterator over the remaining items. A producer failure or the
// end of ctx is yielded as the final pair. Breaking out of the loop cancels the session.
func (s *Session[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, ok, err := s.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(v, nil) {
				s.Cancel()
				return
			}
		}
	}
}
