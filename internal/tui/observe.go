package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/workbench/internal/core/activity"
	"github.com/hay-kot/workbench/internal/core/explorer"
	"github.com/hay-kot/workbench/internal/core/pipeline"
	"github.com/hay-kot/workbench/internal/core/project"
	"github.com/hay-kot/workbench/internal/workbench"
)

// activityStateMsg carries a new activity bar snapshot.
type activityStateMsg struct {
	state activity.State
}

// explorerStateMsg carries a new explorer snapshot.
type explorerStateMsg struct {
	state explorer.State
}

// Sender is the part of tea.Program observers need.
type Sender interface {
	Send(msg tea.Msg)
}

// Observe forwards activity bar, explorer and projects snapshots to p until
// ctx ends. Every store is subscribed before Observe returns, so messages
// dispatched afterwards are never missed.
func Observe(ctx context.Context, svc *workbench.Service, p Sender) {
	pipeline.Subscribe(svc.ActivityStore().CreateStore(ctx), func(st activity.State) {
		p.Send(activityStateMsg{state: st})
	})
	pipeline.Subscribe(svc.ExplorerStore().CreateStore(ctx), func(st explorer.State) {
		p.Send(explorerStateMsg{state: st})
	})
	pipeline.Subscribe(svc.ProjectStore().CreateStore(ctx), func(st project.State) {
		p.Send(projectsStateMsg{state: st})
	})
}

// DefaultActivities populate the activity bar on start-up.
var DefaultActivities = []activity.Activity{
	{ID: "explorer", Title: "Explorer", Icon: "⌸"},
	{ID: "search", Title: "Search", Icon: "⌕"},
	{ID: "source-control", Title: "Source Control", Icon: "⎇"},
	{ID: "extensions", Title: "Extensions", Icon: "⊞"},
}

// DefaultSections populate the explorer on start-up.
var DefaultSections = []explorer.Section{
	{ID: "open-editors", Title: "Open Editors"},
	{ID: ProjectsSection, Title: "Projects"},
	{ID: "outline", Title: "Outline"},
}

// ProjectsSection is the explorer section that lists stored projects.
const ProjectsSection = "projects"

// Seed dispatches the default activities and sections.
func Seed(ctx context.Context, svc *workbench.Service) error {
	for _, a := range DefaultActivities {
		if err := svc.AddActivity(ctx, a); err != nil {
			return err
		}
	}
	for _, s := range DefaultSections {
		if err := svc.AddSection(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
