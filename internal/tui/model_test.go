package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/workbench/internal/core/activity"
	"github.com/hay-kot/workbench/internal/core/explorer"
	"github.com/hay-kot/workbench/internal/core/liststore"
	"github.com/hay-kot/workbench/internal/core/project"
	"github.com/hay-kot/workbench/internal/store/memory"
	"github.com/hay-kot/workbench/internal/workbench"
)

func newModel(t *testing.T) (Model, *workbench.Service) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc := workbench.New(memory.New[project.Project](), 100*time.Millisecond, zerolog.Nop())
	return New(ctx, svc, false), svc
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func activityState(ids ...string) activity.State {
	var st activity.State
	for _, id := range ids {
		st = st.Append(activity.Activity{ID: id, Title: id})
	}
	return st
}

func TestModel_CursorStaysInBounds(t *testing.T) {
	m, _ := newModel(t)
	m, _ = update(t, m, activityStateMsg{state: activityState("a", "b")})

	for range 5 {
		m, _ = update(t, m, keyPress("down"))
	}
	assert.Equal(t, 1, m.cursor[paneActivity])

	for range 5 {
		m, _ = update(t, m, keyPress("k"))
	}
	assert.Equal(t, 0, m.cursor[paneActivity])

	// A shorter snapshot pulls the cursor back inside the list.
	m.cursor[paneActivity] = 1
	m, _ = update(t, m, activityStateMsg{state: activityState("a")})
	assert.Equal(t, 0, m.cursor[paneActivity])
}

func TestModel_SwitchPane(t *testing.T) {
	m, _ := newModel(t)
	assert.Equal(t, paneActivity, m.focus)

	m, _ = update(t, m, keyPress("tab"))
	assert.Equal(t, paneExplorer, m.focus)

	m, _ = update(t, m, keyPress("tab"))
	assert.Equal(t, paneActivity, m.focus)
}

func TestModel_ToggleDispatches(t *testing.T) {
	m, svc := newModel(t)

	states := svc.ExplorerStore().CreateStore(m.ctx)
	require.NoError(t, svc.AddSection(m.ctx, explorer.Section{ID: "outline", Title: "Outline"}))

	var st explorer.State
	select {
	case st = <-states:
	case <-time.After(time.Second):
		t.Fatal("no explorer snapshot")
	}

	m, _ = update(t, m, explorerStateMsg{state: st})
	m, _ = update(t, m, keyPress("tab"))
	_, cmd := update(t, m, keyPress("enter"))
	require.NotNil(t, cmd)
	cmd()

	select {
	case st = <-states:
		sec, ok := explorer.Expanded(st)
		require.True(t, ok)
		assert.Equal(t, "outline", sec.ID)
	case <-time.After(time.Second):
		t.Fatal("toggle was not dispatched")
	}
}

func TestModel_ToggleOnEmptyPaneDoesNothing(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := update(t, m, keyPress("enter"))
	assert.Nil(t, cmd)
}

func TestModel_StatusFromTracker(t *testing.T) {
	m, _ := newModel(t)

	m, _ = update(t, m, openActivityMsg{open: activity.Activity{Title: "Search"}, ok: true})
	assert.Equal(t, "open: Search", m.status)

	m, _ = update(t, m, openActivityMsg{})
	assert.Empty(t, m.status)
}

func TestModel_ProjectsSectionLists(t *testing.T) {
	m, _ := newModel(t)

	var st explorer.State
	st = st.Append(explorer.Section{ID: ProjectsSection, Title: "Projects"})
	st = liststore.Toggle(st, ProjectsSection, func(s explorer.Section) string { return s.ID })

	m, _ = update(t, m, explorerStateMsg{state: st})
	m, _ = update(t, m, projectsStateMsg{state: project.State{Projects: []project.Project{{Name: "payments"}}}})

	view := m.View()
	assert.Contains(t, view, "Projects")
	assert.Contains(t, view, "payments")
}

// senderFunc collects messages the observers send.
type senderFunc func(tea.Msg)

func (f senderFunc) Send(msg tea.Msg) { f(msg) }

func TestObserve_ForwardsProjectsAndReloads(t *testing.T) {
	m, svc := newModel(t)
	_, err := svc.CreateProject(m.ctx, "bridge")
	require.NoError(t, err)

	msgs := make(chan projectsStateMsg, 4)
	Observe(m.ctx, svc, senderFunc(func(msg tea.Msg) {
		if pm, ok := msg.(projectsStateMsg); ok {
			msgs <- pm
		}
	}))

	next := func() project.State {
		t.Helper()
		select {
		case pm := <-msgs:
			return pm.state
		case <-time.After(time.Second):
			t.Fatal("no projects snapshot")
			return project.State{}
		}
	}

	st := next()
	require.Len(t, st.Projects, 1)
	assert.Equal(t, "bridge", st.Projects[0].Name)

	_, err = svc.CreateProject(m.ctx, "tower")
	require.NoError(t, err)

	_, cmd := update(t, m, keyPress("r"))
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())

	assert.Len(t, next().Projects, 2)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := update(t, m, keyPress("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
