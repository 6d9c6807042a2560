// Package tui implements the Bubble Tea TUI for workbench.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/workbench/internal/core/activity"
	"github.com/hay-kot/workbench/internal/core/explorer"
	"github.com/hay-kot/workbench/internal/core/project"
	"github.com/hay-kot/workbench/internal/workbench"
)

// pane identifies the focused column.
type pane int

const (
	paneActivity pane = iota
	paneExplorer
)

// projectsStateMsg carries a new projects snapshot.
type projectsStateMsg struct {
	state project.State
}

// openActivityMsg reports the activity the tracker considers open.
type openActivityMsg struct {
	open activity.Activity
	ok   bool
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx     context.Context
	service *workbench.Service
	keys    keyMap
	help    help.Model

	activity activity.State
	explorer explorer.State
	projects project.State

	focus  pane
	cursor [2]int

	status string
	width  int
	height int
}

// New creates a new TUI model. ctx bounds every store the model opens.
func New(ctx context.Context, service *workbench.Service, showHelp bool) Model {
	h := help.New()
	h.ShowAll = showHelp
	h.Styles.ShortKey = helpStyle
	h.Styles.ShortDesc = helpStyle
	h.Styles.ShortSeparator = helpStyle
	h.Styles.FullKey = helpStyle
	h.Styles.FullDesc = helpStyle
	h.Styles.FullSeparator = helpStyle

	return Model{
		ctx:      ctx,
		service:  service,
		keys:     defaultKeyMap(),
		help:     h,
		projects: project.State{Projects: []project.Project{}},
	}
}

// Init initializes the model. Snapshots arrive through Observe.
func (m Model) Init() tea.Cmd {
	return nil
}

// refreshProjects asks the projects store to load again.
func (m Model) refreshProjects() tea.Cmd {
	return func() tea.Msg {
		m.service.RefreshProjects(m.ctx)
		return nil
	}
}

// queryOpen asks the tracker which activity is open.
func (m Model) queryOpen() tea.Cmd {
	return func() tea.Msg {
		open, ok := m.service.ActiveActivity(m.ctx)
		return openActivityMsg{open: open, ok: ok}
	}
}

// toggle dispatches off the update loop; observers sending snapshots back
// into the program would otherwise block against it.
func (m Model) toggle() tea.Cmd {
	switch m.focus {
	case paneActivity:
		if m.cursor[paneActivity] >= m.activity.Len() {
			return nil
		}
		id := m.activity.Items[m.cursor[paneActivity]].Value.ID
		return func() tea.Msg {
			m.service.ToggleActivity(m.ctx, id)
			return nil
		}
	case paneExplorer:
		if m.cursor[paneExplorer] >= m.explorer.Len() {
			return nil
		}
		id := m.explorer.Items[m.cursor[paneExplorer]].Value.ID
		return func() tea.Msg {
			m.service.ToggleSection(m.ctx, id)
			return nil
		}
	}
	return nil
}

func (m Model) paneLen(p pane) int {
	if p == paneActivity {
		return m.activity.Len()
	}
	return m.explorer.Len()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case activityStateMsg:
		m.activity = msg.state
		m.cursor[paneActivity] = clamp(m.cursor[paneActivity], m.activity.Len())
		return m, m.queryOpen()

	case explorerStateMsg:
		m.explorer = msg.state
		m.cursor[paneExplorer] = clamp(m.cursor[paneExplorer], m.explorer.Len())
		return m, nil

	case projectsStateMsg:
		m.projects = msg.state
		return m, nil

	case openActivityMsg:
		if msg.ok {
			m.status = "open: " + msg.open.Title
		} else {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Switch):
		m.focus = (m.focus + 1) % 2
	case key.Matches(msg, m.keys.Up):
		if m.cursor[m.focus] > 0 {
			m.cursor[m.focus]--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor[m.focus] < m.paneLen(m.focus)-1 {
			m.cursor[m.focus]++
		}
	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggle()
	case key.Matches(msg, m.keys.Reload):
		return m, m.refreshProjects()
	}
	return m, nil
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
