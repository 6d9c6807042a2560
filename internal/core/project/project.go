// Package project defines projects and the projects section store.
package project

import (
	"context"
	"time"

	"github.com/hay-kot/workbench/internal/core/pipeline"
)

// Project is a named workbench project.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// State is the projects section snapshot.
type State struct {
	Projects []Project
}

// Refresh asks live projects stores to load the projects again.
type Refresh struct{}

// Lister loads projects that satisfy filter. A nil filter matches all.
type Lister interface {
	List(ctx context.Context, filter func(Project) bool) ([]Project, error)
}

// Store is the projects store. It fetches once per CreateStore and again on
// every Refresh.
type Store struct {
	projects  Lister
	refreshes pipeline.Observable[Refresh]
}

// NewStore creates a Store backed by projects. refreshes may be nil, in which
// case every store fetches exactly once.
func NewStore(projects Lister, refreshes pipeline.Observable[Refresh]) *Store {
	return &Store{projects: projects, refreshes: refreshes}
}

// CreateStore loads the projects and emits a State. A failed load emits an
// empty State. Each Refresh starts a new load that cancels one still in
// flight, so only the latest load is published.
func (s *Store) CreateStore(ctx context.Context) <-chan State {
	if s.refreshes == nil {
		return s.fetch(ctx)
	}

	triggers := pipeline.StartWith(ctx, Refresh{}, s.refreshes.Stream(ctx))
	return pipeline.SwitchMap(ctx, triggers, func(ctx context.Context, _ Refresh) <-chan State {
		return s.fetch(ctx)
	})
}

func (s *Store) fetch(ctx context.Context) <-chan State {
	return pipeline.FromFunc(ctx, s.load, func(error) State {
		return State{Projects: []Project{}}
	})
}

func (s *Store) load(ctx context.Context) (State, error) {
	projects, err := s.projects.List(ctx, nil)
	if err != nil {
		return State{}, err
	}
	if projects == nil {
		projects = []Project{}
	}
	return State{Projects: projects}, nil
}
