// Package activity defines the activity bar: the column of buttons that open
// and close workbench panels. At most one activity is open at a time.
package activity

import (
	"github.com/hay-kot/workbench/internal/core/dispatch"
	"github.com/hay-kot/workbench/internal/core/liststore"
	"github.com/hay-kot/workbench/internal/core/pipeline"
)

// Activity is a button in the activity bar.
type Activity struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Icon  string `yaml:"icon"`
}

// Toggle opens the activity with the given ID, or closes it when it is
// already open.
type Toggle struct {
	ID string
}

// Query asks for the currently open activity.
type Query struct {
	Reply dispatch.ReplySink[Activity]
}

// State is the activity bar snapshot.
type State = liststore.State[Activity]

// Key identifies an activity.
func Key(a Activity) string {
	return a.ID
}

// NewStore creates the activity bar store. Every Activity from activities is
// appended; every Toggle from toggles opens or closes one.
func NewStore(activities pipeline.Observable[Activity], toggles pipeline.Observable[Toggle]) *liststore.Store[Activity, string] {
	ids := pipeline.MapObservable(toggles, func(t Toggle) string { return t.ID })
	return liststore.New(activities, ids, Key)
}
