package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/workbench/internal/core/cursor"
)

func drain(t *testing.T, b *Backend[string], collection string) []string {
	t.Helper()

	sess := cursor.NewSession[string]()
	h, err := b.Open(context.Background(), collection, sess)
	require.NoError(t, err)
	defer h.Close() //nolint:errcheck

	var got []string
	for v, err := range sess.All(context.Background()) {
		require.NoError(t, err)
		got = append(got, v)
	}
	return got
}

func TestBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("empty collection exhausts immediately", func(t *testing.T) {
		assert.Empty(t, drain(t, New[string](), "missing"))
	})

	t.Run("insert then open", func(t *testing.T) {
		b := New[string]()
		require.NoError(t, b.Insert(ctx, "names", "ada"))
		require.NoError(t, b.Insert(ctx, "names", "grace"))
		require.NoError(t, b.Insert(ctx, "other", "linus"))

		assert.Equal(t, []string{"ada", "grace"}, drain(t, b, "names"))
		assert.Equal(t, []string{"linus"}, drain(t, b, "other"))
	})

	t.Run("seed replaces contents", func(t *testing.T) {
		b := New[string]()
		require.NoError(t, b.Insert(ctx, "names", "old"))
		b.Seed("names", "x", "y")

		assert.Equal(t, []string{"x", "y"}, drain(t, b, "names"))
	})

	t.Run("close is idempotent", func(t *testing.T) {
		b := New[string]()
		b.Seed("names", "a")

		h, err := b.Open(ctx, "names", cursor.NewSession[string]())
		require.NoError(t, err)
		require.NoError(t, h.Close())
		require.NoError(t, h.Close())
	})
}
