package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/workbench/internal/tui"
)

type TuiCmd struct {
	flags *Flags
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{
		flags: flags,
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc := cmd.flags.Service
	tracking := svc.Track(ctx)

	m := tui.New(ctx, svc, cmd.flags.Config.TUI.ShowHelp)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	tui.Observe(ctx, svc, p)
	go func() {
		if err := tui.Seed(ctx, svc); err != nil {
			p.Quit()
		}
	}()

	_, err := p.Run()
	interrupted := ctx.Err() != nil

	cancel()
	<-tracking

	if err != nil && !interrupted {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
