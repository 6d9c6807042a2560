package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterState struct {
	Count int
}

func TestFactories(t *testing.T) {
	r := NewFactories()

	_, ok := FactoryFor[counterState](r)
	assert.False(t, ok)

	RegisterFactory[counterState](r, FactoryFunc[counterState](func(ctx context.Context) <-chan counterState {
		return Scan(ctx, feed(1, 1, 1), counterState{}, func(s counterState, n int) counterState {
			return counterState{Count: s.Count + n}
		})
	}))

	f, ok := FactoryFor[counterState](r)
	require.True(t, ok)

	// Each call builds its own pipeline.
	first := collect(t, f.CreateStore(context.Background()))
	second := collect(t, f.CreateStore(context.Background()))

	want := []counterState{{1}, {2}, {3}}
	assert.Equal(t, want, first)
	assert.Equal(t, want, second)
	assert.Equal(t, []string{"pipeline.counterState"}, r.Types())
}
