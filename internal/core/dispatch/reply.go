package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultReplyTimeout is a reasonable timeout for DispatchAndReply callers
// that have no better value.
const DefaultReplyTimeout = 10 * time.Second

// ErrReplyTimeout is returned when no reply arrives before the timeout.
var ErrReplyTimeout = errors.New("reply timed out")

// ReplySink captures the reply to a message. Only the first call has an
// effect; later calls are ignored.
type ReplySink[R any] func(reply R)

func newReplySlot[R any]() (ReplySink[R], <-chan R) {
	var (
		once sync.Once
		ch   = make(chan R, 1)
	)
	sink := func(reply R) {
		once.Do(func() { ch <- reply })
	}
	return sink, ch
}

// DispatchAndReply builds a message with factory, dispatches it on d and
// waits for a subscriber to call the reply sink. A timeout of zero or less
// waits until the reply arrives or ctx ends.
//
// Returns ErrReplyTimeout when the timeout elapses first, and ctx.Err() when
// the context ends first.
func DispatchAndReply[M, R any](
	ctx context.Context,
	d *Dispatcher[M],
	factory func(ReplySink[R]) M,
	timeout time.Duration,
) (R, error) {
	sink, replies := newReplySlot[R]()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	d.DispatchContext(ctx, factory(sink))

	var zero R
	select {
	case reply := <-replies:
		return reply, nil
	case <-expired:
		d.log.Debug().Dur("timeout", timeout).Msg("reply timed out")
		return zero, ErrReplyTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// DispatchAndReplyOr is DispatchAndReply with a default: when the timeout
// elapses or ctx ends before a reply arrives, fallback is returned.
func DispatchAndReplyOr[M, R any](
	ctx context.Context,
	d *Dispatcher[M],
	factory func(ReplySink[R]) M,
	timeout time.Duration,
	fallback R,
) R {
	reply, err := DispatchAndReply(ctx, d, factory, timeout)
	if err != nil {
		return fallback
	}
	return reply
}
