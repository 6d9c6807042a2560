// Package pipeline provides channel-based stream operators used to build
// stores: a fold (Scan), switch-to-latest (SwitchMap) and an order-preserving
// merge (MergeOrdered), plus the small helpers needed to glue them together.
//
// Every operator runs one goroutine that owns its output channel. Outputs
// close when the input is exhausted or the context ends.
package pipeline

import "context"

// Observable is anything that can open a live stream of values. Each call to
// Stream opens an independent subscription that ends with ctx.
type Observable[T any] interface {
	Stream(ctx context.Context) <-chan T
}

// ObservableFunc adapts a function to Observable.
type ObservableFunc[T any] func(ctx context.Context) <-chan T

// Stream implements Observable.
func (f ObservableFunc[T]) Stream(ctx context.Context) <-chan T {
	return f(ctx)
}

// MapObservable returns an Observable whose streams are src's streams passed
// through fn.
func MapObservable[T, U any](src Observable[T], fn func(T) U) Observable[U] {
	return ObservableFunc[U](func(ctx context.Context) <-chan U {
		return Map(ctx, src.Stream(ctx), fn)
	})
}

// send delivers v on out unless ctx ends first.
func send[T any](ctx context.Context, out chan<- T, v T) bool {
	select {
	case out <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

// Scan folds in into a stream of states. Each input produces exactly one
// output, in input order. The seed itself is not emitted.
func Scan[E, S any](ctx context.Context, in <-chan E, seed S, fold func(S, E) S) <-chan S {
	out := make(chan S)

	go func() {
		defer close(out)

		state := seed
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-in:
				if !ok {
					return
				}
				state = fold(state, e)
				if !send(ctx, out, state) {
					return
				}
			}
		}
	}()

	return out
}

// SwitchMap projects every value of in to an inner stream and forwards only
// the most recent inner stream. When a new outer value arrives the context of
// the current inner stream is cancelled before the next one is started, so at
// most one inner computation is live at a time.
//
// The output closes once in is exhausted and the current inner stream has
// finished, or when ctx ends.
func SwitchMap[T, U any](ctx context.Context, in <-chan T, project func(context.Context, T) <-chan U) <-chan U {
	out := make(chan U)

	go func() {
		defer close(out)

		var (
			inner  <-chan U
			cancel context.CancelFunc = func() {}
		)
		defer func() { cancel() }()

		for in != nil || inner != nil {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					in = nil
					continue
				}

				cancel()
				var innerCtx context.Context
				innerCtx, cancel = context.WithCancel(ctx)
				inner = project(innerCtx, v)
			case u, ok := <-inner:
				if !ok {
					inner = nil
					continue
				}
				if !send(ctx, out, u) {
					return
				}
			}
		}
	}()

	return out
}

// StartWith emits first and then everything from in.
func StartWith[T any](ctx context.Context, first T, in <-chan T) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)

		if !send(ctx, out, first) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				if !send(ctx, out, v) {
					return
				}
			}
		}
	}()

	return out
}

// Map applies fn to every value of in.
func Map[T, U any](ctx context.Context, in <-chan T, fn func(T) U) <-chan U {
	out := make(chan U)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				if !send(ctx, out, fn(v)) {
					return
				}
			}
		}
	}()

	return out
}

// Filter forwards the values of in for which keep returns true.
func Filter[T any](ctx context.Context, in <-chan T, keep func(T) bool) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				if !keep(v) {
					continue
				}
				if !send(ctx, out, v) {
					return
				}
			}
		}
	}()

	return out
}

// Either holds a value taken from one of the two inputs of MergeOrdered.
type Either[A, B any] struct {
	First   A
	Second  B
	IsFirst bool
}

// MergeOrdered merges first and second into one stream. Before a value of
// second is forwarded, every value already waiting on first is forwarded, so a
// value sent on first before a value was sent on second is never delivered
// after it. The output closes once both inputs are exhausted or ctx ends.
func MergeOrdered[A, B any](ctx context.Context, first <-chan A, second <-chan B) <-chan Either[A, B] {
	out := make(chan Either[A, B])

	go func() {
		defer close(out)

		// drain forwards what is ready on first without blocking.
		drain := func() bool {
			for first != nil {
				select {
				case a, ok := <-first:
					if !ok {
						first = nil
						return true
					}
					if !send(ctx, out, Either[A, B]{First: a, IsFirst: true}) {
						return false
					}
				default:
					return true
				}
			}
			return true
		}

		for first != nil || second != nil {
			select {
			case <-ctx.Done():
				return
			case a, ok := <-first:
				if !ok {
					first = nil
					continue
				}
				if !send(ctx, out, Either[A, B]{First: a, IsFirst: true}) {
					return
				}
			case b, ok := <-second:
				if !ok {
					second = nil
					continue
				}
				if !drain() {
					return
				}
				if !send(ctx, out, Either[A, B]{Second: b}) {
					return
				}
			}
		}
	}()

	return out
}

// FromFunc runs fn once and emits its result. If fn fails, fallback maps the
// error to the value that is emitted instead, so the stream always settles
// with exactly one value unless ctx ends first.
func FromFunc[T any](ctx context.Context, fn func(context.Context) (T, error), fallback func(error) T) <-chan T {
	out := make(chan T, 1)

	go func() {
		defer close(out)

		v, err := fn(ctx)
		if err != nil {
			v = fallback(err)
		}
		send(ctx, out, v)
	}()

	return out
}

// Subscribe calls fn for every value of in on a separate goroutine and
// returns immediately. The returned channel closes once in is exhausted.
func Subscribe[T any](in <-chan T, fn func(T)) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)
		for v := range in {
			fn(v)
		}
	}()

	return done
}
