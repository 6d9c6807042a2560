// Package explorer defines the explorer panel and its collapsible sections.
package explorer

import (
	"github.com/hay-kot/workbench/internal/core/liststore"
	"github.com/hay-kot/workbench/internal/core/pipeline"
)

// Section is a collapsible explorer section.
type Section struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// Toggle expands the section with the given ID and collapses the others, or
// collapses it when it is already expanded.
type Toggle struct {
	ID string
}

// State is the explorer snapshot. An Active item is an expanded section.
type State = liststore.State[Section]

// Expanded returns the expanded section, if any.
func Expanded(s State) (Section, bool) {
	return s.Active()
}

func key(s Section) string {
	return s.ID
}

// NewStore creates the explorer store.
func NewStore(sections pipeline.Observable[Section], toggles pipeline.Observable[Toggle]) *liststore.Store[Section, string] {
	ids := pipeline.MapObservable(toggles, func(t Toggle) string { return t.ID })
	return liststore.New(sections, ids, key)
}
