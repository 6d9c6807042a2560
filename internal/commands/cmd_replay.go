package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/workbench/internal/core/activity"
	"github.com/hay-kot/workbench/internal/core/explorer"
	"github.com/hay-kot/workbench/internal/core/liststore"
	"github.com/hay-kot/workbench/internal/printer"
	"github.com/hay-kot/workbench/internal/workbench"
)

type ReplayCmd struct {
	flags *Flags
}

// NewReplayCmd creates a new replay command
func NewReplayCmd(flags *Flags) *ReplayCmd {
	return &ReplayCmd{flags: flags}
}

// Register adds the replay command to the application
func (cmd *ReplayCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "replay",
		Usage:     "Run a script of workbench actions",
		UsageText: "workbench replay <file|->",
		Description: `Replays a YAML script against fresh activity bar and explorer stores and
prints the final state of both.

Example script:
  steps:
    - add-activity: {id: files, title: Files, icon: F}
    - toggle-activity: files
    - add-section: {id: outline, title: Outline}
    - toggle-section: outline`,
		Action: cmd.run,
	})

	return app
}

func (cmd *ReplayCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.Args().Len() != 1 {
		return fmt.Errorf("script file required\n\nUsage: workbench replay <file|->")
	}

	var r io.Reader = os.Stdin
	if path := c.Args().First(); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	script, err := workbench.ParseScript(r)
	if err != nil {
		return fmt.Errorf("load script: %w", err)
	}

	res, err := cmd.flags.Service.Replay(ctx, script)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	p.Section("Activity Bar")
	printList(p, res.Activity, func(a activity.Activity) string { return a.Icon + " " + a.Title })
	p.Printf("")
	p.Section("Explorer")
	printList(p, res.Explorer, func(s explorer.Section) string { return s.Title })

	p.Printf("")
	p.Successf("Replayed %d step(s)", len(script.Steps))
	return nil
}

func printList[T any](p *printer.Printer, st liststore.State[T], label func(T) string) {
	if st.Len() == 0 {
		p.Infof("empty")
		return
	}
	for _, it := range st.Items {
		if it.Active {
			p.CheckItem(label(it.Value), "open")
		} else {
			p.Printf("    %s", label(it.Value))
		}
	}
}
