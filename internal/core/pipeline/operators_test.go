package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect drains ch until it closes or the test deadline passes.
func collect[T any](t *testing.T, ch <-chan T) []T {
	t.Helper()

	var out []T
	timeout := time.After(2 * time.Second)
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, v)
		case <-timeout:
			t.Fatalf("stream did not close, got %v so far", out)
			return out
		}
	}
}

func feed[T any](values ...T) <-chan T {
	ch := make(chan T, len(values))
	for _, v := range values {
		ch <- v
	}
	close(ch)
	return ch
}

func TestScan(t *testing.T) {
	ctx := context.Background()

	sums := Scan(ctx, feed(1, 2, 3, 4), 10, func(acc, n int) int { return acc + n })

	assert.Equal(t, []int{11, 13, 16, 20}, collect(t, sums))
}

func TestScan_EmptyInputEmitsNothing(t *testing.T) {
	ctx := context.Background()

	out := Scan(ctx, feed[int](), 0, func(acc, n int) int { return acc + n })

	assert.Empty(t, collect(t, out))
}

func TestScan_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan int)

	out := Scan(ctx, in, 0, func(acc, n int) int { return acc + n })
	cancel()

	assert.Empty(t, collect(t, out))
}

func TestSwitchMap_OnlyLatestInnerReachesObserver(t *testing.T) {
	ctx := context.Background()
	outer := make(chan int)

	started := make(chan int, 2)
	cancelled := make(chan int, 2)

	project := func(ctx context.Context, n int) <-chan string {
		out := make(chan string)
		go func() {
			defer close(out)
			started <- n
			select {
			case <-time.After(50 * time.Millisecond):
				send(ctx, out, "settled")
			case <-ctx.Done():
				cancelled <- n
			}
		}()
		return Map(ctx, out, func(s string) string {
			return s + "-" + string(rune('0'+n))
		})
	}

	results := SwitchMap(ctx, outer, project)

	outer <- 1
	<-started
	outer <- 2
	close(outer)

	assert.Equal(t, []string{"settled-2"}, collect(t, results))

	select {
	case n := <-cancelled:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("first inner stream was not cancelled")
	}
}

func TestSwitchMap_ForwardsCurrentInner(t *testing.T) {
	ctx := context.Background()

	results := SwitchMap(ctx, feed(3), func(ctx context.Context, n int) <-chan int {
		vals := make([]int, n)
		for i := range vals {
			vals[i] = i
		}
		return feed(vals...)
	})

	assert.Equal(t, []int{0, 1, 2}, collect(t, results))
}

func TestSwitchMap_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	outer := make(chan int)

	results := SwitchMap(ctx, outer, func(ctx context.Context, n int) <-chan int {
		return make(chan int)
	})
	outer <- 1
	cancel()

	assert.Empty(t, collect(t, results))
}

func TestStartWith(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, []string{"a", "b", "c"}, collect(t, StartWith(ctx, "a", feed("b", "c"))))
}

func TestMapObservable(t *testing.T) {
	src := ObservableFunc[int](func(ctx context.Context) <-chan int {
		return feed(1, 2)
	})

	doubled := MapObservable(src, func(n int) int { return n * 2 })

	assert.Equal(t, []int{2, 4}, collect(t, doubled.Stream(context.Background())))
}

func TestFromFunc(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		out := FromFunc(ctx, func(context.Context) ([]string, error) {
			return []string{"x"}, nil
		}, func(error) []string { return []string{} })

		assert.Equal(t, [][]string{{"x"}}, collect(t, out))
	})

	t.Run("failure uses fallback", func(t *testing.T) {
		var seen error
		out := FromFunc(ctx, func(context.Context) ([]string, error) {
			return nil, errors.New("boom")
		}, func(err error) []string {
			seen = err
			return []string{}
		})

		assert.Equal(t, [][]string{{}}, collect(t, out))
		require.Error(t, seen)
	})
}

func TestSubscribe(t *testing.T) {
	var got []int
	done := Subscribe(feed(1, 2, 3), func(n int) { got = append(got, n) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscribe did not finish")
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestFilter(t *testing.T) {
	ctx := context.Background()

	odd := Filter(ctx, feed(1, 2, 3, 4, 5), func(n int) bool { return n%2 == 1 })

	assert.Equal(t, []int{1, 3, 5}, collect(t, odd))
}

func TestMergeOrdered_FirstSentBeforeSecondArrivesFirst(t *testing.T) {
	ctx := context.Background()

	for range 200 {
		first := make(chan int, 4)
		second := make(chan string, 4)

		first <- 1
		first <- 2
		second <- "x"
		first <- 3
		close(first)
		close(second)

		got := collect(t, MergeOrdered(ctx, first, second))
		require.Len(t, got, 4)

		var (
			firsts []int
			xAt    = -1
		)
		for i, e := range got {
			if e.IsFirst {
				firsts = append(firsts, e.First)
				continue
			}
			assert.Equal(t, "x", e.Second)
			xAt = i
		}
		assert.Equal(t, []int{1, 2, 3}, firsts)
		assert.GreaterOrEqual(t, xAt, 2, "values sent on first before x must precede it")
	}
}

func TestMergeOrdered_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	out := MergeOrdered(ctx, make(chan int), make(chan int))
	cancel()

	assert.Empty(t, collect(t, out))
}
