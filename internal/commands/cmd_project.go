package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/workbench/internal/core/project"
	"github.com/hay-kot/workbench/internal/core/validate"
	"github.com/hay-kot/workbench/internal/printer"
	"github.com/hay-kot/workbench/internal/styles"
	"github.com/hay-kot/workbench/pkg/tmpl"
)

type ProjectCmd struct {
	flags   *Flags
	pattern string
	format  string
}

// NewProjectCmd creates a new project command
func NewProjectCmd(flags *Flags) *ProjectCmd {
	return &ProjectCmd{flags: flags}
}

// Register adds the project command to the application
func (cmd *ProjectCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "project",
		Usage: "Manage workbench projects",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a project",
				UsageText: "workbench project add [name...]",
				Description: `Creates a project in the configured storage backend.

Without a name, an interactive prompt asks for one when stdin is a terminal.

Example:
  workbench project add Payments API`,
				Action: cmd.runAdd,
			},
			{
				Name:      "ls",
				Usage:     "List projects",
				UsageText: "workbench project ls [--match <glob>]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "match",
						Aliases:     []string{"m"},
						Usage:       "only list projects whose name matches the glob",
						Destination: &cmd.pattern,
					},
					cmd.formatFlag(),
				},
				Action: cmd.runList,
			},
			{
				Name:      "get",
				Usage:     "Show a single project",
				UsageText: "workbench project get <name...>",
				Flags:     []cli.Flag{cmd.formatFlag()},
				Action:    cmd.runGet,
			},
		},
	})

	return app
}

func (cmd *ProjectCmd) formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "format",
		Aliases:     []string{"f"},
		Usage:       "Go template rendered per project, e.g. '{{ .Name }} {{ short 8 .ID }}'",
		Destination: &cmd.format,
	}
}

func (cmd *ProjectCmd) runAdd(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	name := strings.Join(c.Args().Slice(), " ")
	if name == "" {
		var err error
		if name, err = promptName(); err != nil {
			return err
		}
	}

	proj, err := cmd.flags.Service.CreateProject(ctx, name)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	p.Success("Project created", proj.ID)
	return nil
}

// promptName asks for a project name on an interactive terminal.
func promptName() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("project name required\n\nUsage: workbench project add <name...>")
	}

	var name string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project Name").
				Value(&name).
				Validate(validate.ProjectName),
		),
	).WithTheme(styles.FormTheme()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", cli.Exit("", 1)
	}
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	return name, nil
}

func (cmd *ProjectCmd) runList(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	projects, err := cmd.flags.Service.ListProjects(ctx, cmd.pattern)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	if len(projects) == 0 {
		p.Infof("No projects found")
		return nil
	}

	return cmd.write(c, projects)
}

func (cmd *ProjectCmd) runGet(ctx context.Context, c *cli.Command) error {
	name := strings.Join(c.Args().Slice(), " ")
	if name == "" {
		return fmt.Errorf("project name required\n\nUsage: workbench project get <name...>")
	}

	proj, err := cmd.flags.Service.GetProject(ctx, name)
	if err != nil {
		return fmt.Errorf("get project %q: %w", name, err)
	}

	return cmd.write(c, []project.Project{proj})
}

// write prints projects as a table, or through the --format template.
func (cmd *ProjectCmd) write(c *cli.Command, projects []project.Project) error {
	out := c.Root().Writer

	if cmd.format != "" {
		tpl, err := tmpl.Compile(cmd.format)
		if err != nil {
			return fmt.Errorf("format: %w", err)
		}
		for _, proj := range projects {
			line, err := tpl.Render(proj)
			if err != nil {
				return fmt.Errorf("format %s: %w", proj.Name, err)
			}
			_, _ = fmt.Fprintln(out, line)
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tID\tCREATED")
	for _, proj := range projects {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", proj.Name, proj.ID, proj.CreatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}
