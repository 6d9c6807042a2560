// Package workbench wires the dispatchers, stores and project repository
// into the operations the CLI and TUI use.
package workbench

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/workbench/internal/core/activity"
	"github.com/hay-kot/workbench/internal/core/dispatch"
	"github.com/hay-kot/workbench/internal/core/explorer"
	"github.com/hay-kot/workbench/internal/core/pipeline"
	"github.com/hay-kot/workbench/internal/core/project"
	"github.com/hay-kot/workbench/internal/core/repository"
	"github.com/hay-kot/workbench/internal/core/validate"
)

// ErrProjectExists is returned when a project name is already taken.
var ErrProjectExists = errors.New("project already exists")

// Service orchestrates workbench operations.
type Service struct {
	log          zerolog.Logger
	replyTimeout time.Duration

	registry  *dispatch.Registry
	factories *pipeline.Factories
	projects  *repository.Repository[project.Project]

	activities       *dispatch.Dispatcher[activity.Activity]
	activityToggles  *dispatch.Dispatcher[activity.Toggle]
	activityQueries  *dispatch.Dispatcher[activity.Query]
	sections         *dispatch.Dispatcher[explorer.Section]
	sectionToggles   *dispatch.Dispatcher[explorer.Toggle]
	refreshes        *dispatch.Dispatcher[project.Refresh]
	activityStore    pipeline.Factory[activity.State]
	explorerStore    pipeline.Factory[explorer.State]
	projectListStore pipeline.Factory[project.State]
}

// New creates a new Service. Every message and state type is registered
// up front; nothing is discovered at runtime.
func New(backend repository.Backend[project.Project], replyTimeout time.Duration, log zerolog.Logger) *Service {
	registry := dispatch.NewRegistry(log.With().Str("component", "dispatch").Logger())

	s := &Service{
		log:          log.With().Str("component", "workbench").Logger(),
		replyTimeout: replyTimeout,
		registry:     registry,
		factories:    pipeline.NewFactories(),
		projects: repository.New(
			backend,
			repository.CollectionName[project.Project](),
			log.With().Str("component", "repository").Logger(),
		),

		activities:      dispatch.Register[activity.Activity](registry),
		activityToggles: dispatch.Register[activity.Toggle](registry),
		activityQueries: dispatch.Register[activity.Query](registry),
		sections:        dispatch.Register[explorer.Section](registry),
		sectionToggles:  dispatch.Register[explorer.Toggle](registry),
		refreshes:       dispatch.Register[project.Refresh](registry),
	}

	s.activityStore = activity.NewStore(s.activities, s.activityToggles)
	s.explorerStore = explorer.NewStore(s.sections, s.sectionToggles)
	s.projectListStore = project.NewStore(s.projects, s.refreshes)

	pipeline.RegisterFactory(s.factories, s.activityStore)
	pipeline.RegisterFactory(s.factories, s.explorerStore)
	pipeline.RegisterFactory(s.factories, s.projectListStore)

	return s
}

// Registry returns the dispatcher table.
func (s *Service) Registry() *dispatch.Registry {
	return s.registry
}

// Factories returns the store factory table.
func (s *Service) Factories() *pipeline.Factories {
	return s.factories
}

// ActivityStore returns the activity bar store.
func (s *Service) ActivityStore() pipeline.Factory[activity.State] {
	return s.activityStore
}

// ExplorerStore returns the explorer store.
func (s *Service) ExplorerStore() pipeline.Factory[explorer.State] {
	return s.explorerStore
}

// ProjectStore returns the projects store. It loads on creation and again
// after every RefreshProjects.
func (s *Service) ProjectStore() pipeline.Factory[project.State] {
	return s.projectListStore
}

// RefreshProjects reloads every live projects store.
func (s *Service) RefreshProjects(ctx context.Context) {
	s.refreshes.DispatchContext(ctx, project.Refresh{})
}

// AddActivity appends an activity to every live activity bar.
func (s *Service) AddActivity(ctx context.Context, a activity.Activity) error {
	if err := validate.ID(a.ID); err != nil {
		return fmt.Errorf("add activity: %w", err)
	}
	s.activities.DispatchContext(ctx, a)
	return nil
}

// ToggleActivity opens or closes the activity with id.
func (s *Service) ToggleActivity(ctx context.Context, id string) {
	s.activityToggles.DispatchContext(ctx, activity.Toggle{ID: id})
}

// AddSection appends a section to every live explorer.
func (s *Service) AddSection(ctx context.Context, sec explorer.Section) error {
	if err := validate.ID(sec.ID); err != nil {
		return fmt.Errorf("add section: %w", err)
	}
	s.sections.DispatchContext(ctx, sec)
	return nil
}

// ToggleSection expands or collapses the section with id.
func (s *Service) ToggleSection(ctx context.Context, id string) {
	s.sectionToggles.DispatchContext(ctx, explorer.Toggle{ID: id})
}

// Track answers activity queries with the open activity of a live activity
// bar until ctx ends. The returned channel closes once tracking stopped.
func (s *Service) Track(ctx context.Context) <-chan struct{} {
	var (
		mu     sync.Mutex
		latest activity.State
	)

	sub := s.activityQueries.Subscribe(func(q activity.Query) {
		mu.Lock()
		open, _ := latest.Active()
		mu.Unlock()
		q.Reply(open)
	})

	observed := pipeline.Subscribe(s.activityStore.CreateStore(ctx), func(st activity.State) {
		mu.Lock()
		latest = st
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-observed
		sub.Unsubscribe()
	}()
	return done
}

// ActiveActivity asks the tracker for the open activity. ok is false when
// nothing is open or no tracker answered within the reply timeout.
func (s *Service) ActiveActivity(ctx context.Context) (activity.Activity, bool) {
	open := dispatch.DispatchAndReplyOr(ctx, s.activityQueries,
		func(reply dispatch.ReplySink[activity.Activity]) activity.Query {
			return activity.Query{Reply: reply}
		},
		s.replyTimeout,
		activity.Activity{},
	)
	return open, open.ID != ""
}

// CreateProject stores a new project named name.
func (s *Service) CreateProject(ctx context.Context, name string) (project.Project, error) {
	if err := validate.ProjectName(name); err != nil {
		return project.Project{}, err
	}

	_, err := s.GetProject(ctx, name)
	switch {
	case err == nil:
		return project.Project{}, fmt.Errorf("%w: %s", ErrProjectExists, name)
	case !errors.Is(err, repository.ErrNotFound):
		return project.Project{}, err
	}

	p := project.Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.projects.Add(ctx, p); err != nil {
		return project.Project{}, err
	}

	s.log.Info().Str("id", p.ID).Str("name", p.Name).Msg("created project")
	return p, nil
}

// ListProjects returns the projects whose name matches the glob pattern.
// An empty pattern matches all projects.
func (s *Service) ListProjects(ctx context.Context, pattern string) ([]project.Project, error) {
	if pattern == "" {
		return s.projects.List(ctx, nil)
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	return s.projects.List(ctx, func(p project.Project) bool {
		ok, _ := doublestar.Match(pattern, p.Name)
		return ok
	})
}

// GetProject returns the project named name.
func (s *Service) GetProject(ctx context.Context, name string) (project.Project, error) {
	return s.projects.Get(ctx, func(p project.Project) bool {
		return p.Name == name
	})
}
