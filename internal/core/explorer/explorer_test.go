package explorer

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/workbench/internal/core/dispatch"
)

func TestStore_ExpandsOneSectionAtATime(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		sections = dispatch.New[Section](zerolog.Nop())
		toggles  = dispatch.New[Toggle](zerolog.Nop())
		states   = NewStore(sections, toggles).CreateStore(ctx)
	)

	next := func() State {
		t.Helper()
		select {
		case st := <-states:
			return st
		case <-time.After(2 * time.Second):
			t.Fatal("no snapshot")
			return State{}
		}
	}

	sections.Dispatch(Section{ID: "editors", Title: "Open Editors"})
	next()
	sections.Dispatch(Section{ID: "outline", Title: "Outline"})
	next()

	toggles.Dispatch(Toggle{ID: "editors"})
	st := next()
	sec, ok := Expanded(st)
	require.True(t, ok)
	assert.Equal(t, "editors", sec.ID)

	toggles.Dispatch(Toggle{ID: "outline"})
	st = next()
	sec, ok = Expanded(st)
	require.True(t, ok)
	assert.Equal(t, "outline", sec.ID)
	assert.False(t, st.Items[0].Active)

	// A new section keeps the expanded one.
	sections.Dispatch(Section{ID: "timeline", Title: "Timeline"})
	st = next()
	require.Equal(t, 3, st.Len())
	sec, ok = Expanded(st)
	require.True(t, ok)
	assert.Equal(t, "outline", sec.ID)
}

func TestExpanded_Empty(t *testing.T) {
	_, ok := Expanded(State{})
	assert.False(t, ok)
}
