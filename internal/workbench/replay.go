package workbench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/workbench/internal/core/activity"
	"github.com/hay-kot/workbench/internal/core/explorer"
	"github.com/hay-kot/workbench/internal/core/liststore"
	"github.com/hay-kot/workbench/internal/core/validate"
)

// Script is a sequence of workbench actions.
//
//	steps:
//	  - add-activity: {id: files, title: Files, icon: F}
//	  - toggle-activity: files
//	  - add-section: {id: outline, title: Outline}
//	  - toggle-section: outline
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is a single action. Exactly one field must be set.
type Step struct {
	AddActivity    *activity.Activity `yaml:"add-activity,omitempty"`
	ToggleActivity string             `yaml:"toggle-activity,omitempty"`
	AddSection     *explorer.Section  `yaml:"add-section,omitempty"`
	ToggleSection  string             `yaml:"toggle-section,omitempty"`
}

func (st Step) actions() int {
	n := 0
	if st.AddActivity != nil {
		n++
	}
	if st.ToggleActivity != "" {
		n++
	}
	if st.AddSection != nil {
		n++
	}
	if st.ToggleSection != "" {
		n++
	}
	return n
}

// ParseScript decodes and validates a YAML script.
func ParseScript(r io.Reader) (Script, error) {
	var script Script
	if err := yaml.NewDecoder(r).Decode(&script); err != nil {
		if errors.Is(err, io.EOF) {
			return Script{}, criterio.NewFieldErrors("steps", fmt.Errorf("script is empty"))
		}
		return Script{}, fmt.Errorf("parse script: %w", err)
	}
	return script, script.Validate()
}

// Validate checks every step names exactly one well-formed action.
func (s Script) Validate() error {
	if len(s.Steps) == 0 {
		return criterio.NewFieldErrors("steps", fmt.Errorf("no steps defined"))
	}

	var errs criterio.FieldErrorsBuilder
	for i, st := range s.Steps {
		field := fmt.Sprintf("steps[%d]", i)

		if n := st.actions(); n != 1 {
			errs = errs.Append(field, fmt.Errorf("must define exactly one action, got %d", n))
			continue
		}

		switch {
		case st.AddActivity != nil:
			if err := validate.ID(st.AddActivity.ID); err != nil {
				errs = errs.Append(field+".add-activity.id", err)
			}
		case st.AddSection != nil:
			if err := validate.ID(st.AddSection.ID); err != nil {
				errs = errs.Append(field+".add-section.id", err)
			}
		}
	}
	return errs.ToError()
}

// ReplayResult holds the snapshots published after the last step.
type ReplayResult struct {
	Activity activity.State
	Explorer explorer.State
}

// Replay runs script against fresh activity and explorer stores and waits
// for each step's snapshot before issuing the next. Toggles issued before
// the first item of their store are dropped and publish nothing.
func (s *Service) Replay(ctx context.Context, script Script) (ReplayResult, error) {
	if err := script.Validate(); err != nil {
		return ReplayResult{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		bar   = newTracked(s.activityStore.CreateStore(ctx), s.replyTimeout)
		panel = newTracked(s.explorerStore.CreateStore(ctx), s.replyTimeout)
	)

	for i, st := range script.Steps {
		var err error
		switch {
		case st.AddActivity != nil:
			if err = s.AddActivity(ctx, *st.AddActivity); err == nil {
				err = bar.await(ctx, bar.len+1)
			}
		case st.ToggleActivity != "":
			if bar.len > 0 {
				s.ToggleActivity(ctx, st.ToggleActivity)
				err = bar.await(ctx, bar.len)
			}
		case st.AddSection != nil:
			if err = s.AddSection(ctx, *st.AddSection); err == nil {
				err = panel.await(ctx, panel.len+1)
			}
		case st.ToggleSection != "":
			if panel.len > 0 {
				s.ToggleSection(ctx, st.ToggleSection)
				err = panel.await(ctx, panel.len)
			}
		}
		if err != nil {
			return ReplayResult{}, fmt.Errorf("step %d: %w", i, err)
		}
		s.log.Debug().Int("step", i).Msg("replayed step")
	}

	return ReplayResult{Activity: bar.latest, Explorer: panel.latest}, nil
}

// tracked follows one store and remembers its latest snapshot.
type tracked[T any] struct {
	states  <-chan liststore.State[T]
	timeout time.Duration
	latest  liststore.State[T]
	len     int
}

func newTracked[T any](states <-chan liststore.State[T], timeout time.Duration) *tracked[T] {
	return &tracked[T]{states: states, timeout: timeout}
}

// await reads the next snapshot and checks it holds want items.
func (t *tracked[T]) await(ctx context.Context, want int) error {
	var expired <-chan time.Time
	if t.timeout > 0 {
		timer := time.NewTimer(t.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case st, ok := <-t.states:
		if !ok {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fmt.Errorf("store closed")
		}
		if st.Len() != want {
			return fmt.Errorf("expected %d items, store published %d", want, st.Len())
		}
		t.latest, t.len = st, st.Len()
		return nil
	case <-expired:
		return fmt.Errorf("no snapshot within %s", t.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
