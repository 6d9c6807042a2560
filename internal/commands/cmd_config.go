package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/workbench/internal/core/config"
	"github.com/hay-kot/workbench/internal/printer"
)

type ConfigCmd struct {
	flags  *Flags
	format string
}

// NewConfigCmd creates a new config command.
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config command to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "config",
		Usage:       "Validate and show the effective configuration",
		UsageText:   "workbench config [options]",
		Description: "Checks the configuration file, data directory and storage settings.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ConfigCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	checks, err := cmd.flags.Config.Inspect(cmd.flags.ConfigPath)

	if cmd.format == "json" {
		return cmd.outputJSON(c, checks, err)
	}
	return cmd.outputText(printer.Ctx(ctx), checks, err)
}

func (cmd *ConfigCmd) outputJSON(c *cli.Command, checks []config.Check, validationErr error) error {
	type fieldError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	type check struct {
		Label  string `json:"label"`
		Detail string `json:"detail"`
	}

	out := struct {
		Valid  bool         `json:"valid"`
		Checks []check      `json:"checks,omitempty"`
		Errors []fieldError `json:"errors,omitempty"`
	}{
		Valid: validationErr == nil,
	}

	for _, ch := range checks {
		out.Checks = append(out.Checks, check{Label: ch.Label, Detail: ch.Detail})
	}
	for _, fe := range extractFieldErrors(validationErr) {
		out.Errors = append(out.Errors, fieldError{Field: fe.Field, Message: fe.Err.Error()})
	}

	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// extractFieldErrors extracts field errors from a validation error.
func extractFieldErrors(err error) criterio.FieldErrors {
	if err == nil {
		return nil
	}
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}
	return criterio.FieldErrors{{Err: err}}
}

func (cmd *ConfigCmd) outputText(p *printer.Printer, checks []config.Check, validationErr error) error {
	p.Section("Configuration")
	for _, ch := range checks {
		p.CheckItem(ch.Label, ch.Detail)
	}

	fieldErrs := extractFieldErrors(validationErr)
	for _, fe := range fieldErrs {
		if fe.Field != "" {
			p.FailItem(fe.Field, fe.Err.Error())
		} else {
			p.FailItem(fe.Err.Error(), "")
		}
	}

	p.Printf("")
	if validationErr == nil {
		p.Successf("Configuration is valid")
		return nil
	}

	p.Errorf("%d error(s)", len(fieldErrs))
	return cli.Exit("", 1)
}
