package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hay-kot/criterio"
)

// Validate checks that the configuration is valid. Problems are reported as
// criterio.FieldErrors keyed by their YAML path.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("data directory cannot be empty"))
	}

	switch c.Storage.Backend {
	case BackendMemory, BackendJSONFile, BackendSQLite:
	default:
		errs = errs.Append("storage.backend", fmt.Errorf("unknown backend %q (want %s, %s or %s)",
			c.Storage.Backend, BackendMemory, BackendJSONFile, BackendSQLite))
	}

	if c.Storage.Backend == BackendSQLite && filepath.Base(c.Storage.Database) != c.Storage.Database && !filepath.IsAbs(c.Storage.Database) {
		errs = errs.Append("storage.database", fmt.Errorf("must be a file name or an absolute path"))
	}

	if c.Dispatch.ReplyTimeout < 0 {
		errs = errs.Append("dispatch.reply_timeout", fmt.Errorf("must not be negative"))
	}

	return errs.ToError()
}

// Check is one line of a configuration report.
type Check struct {
	Label  string
	Detail string
	OK     bool
}

// Inspect validates the configuration and the file system paths it refers
// to. It returns a report of successful checks alongside any errors.
func (c *Config) Inspect(configPath string) ([]Check, error) {
	var (
		checks []Check
		errs   criterio.FieldErrorsBuilder
	)

	if configPath != "" {
		switch info, err := os.Stat(configPath); {
		case err == nil && info.IsDir():
			errs = errs.Append("config", fmt.Errorf("%s is a directory, not a file", configPath))
		case err == nil:
			checks = append(checks, Check{Label: "config file", Detail: configPath + " (found)", OK: true})
		case os.IsNotExist(err):
			checks = append(checks, Check{Label: "config file", Detail: configPath + " (not found, using defaults)", OK: true})
		default:
			errs = errs.Append("config", fmt.Errorf("cannot access %s: %w", configPath, err))
		}
	}

	if c.DataDir != "" {
		switch info, err := os.Stat(c.DataDir); {
		case err == nil && !info.IsDir():
			errs = errs.Append("data_dir", fmt.Errorf("%s exists but is not a directory", c.DataDir))
		case err == nil:
			checks = append(checks, Check{Label: "data directory", Detail: c.DataDir + " (exists)", OK: true})
		case os.IsNotExist(err):
			checks = append(checks, Check{Label: "data directory", Detail: c.DataDir + " (will be created)", OK: true})
		default:
			errs = errs.Append("data_dir", fmt.Errorf("cannot access %s: %w", c.DataDir, err))
		}
	}

	if err := c.Validate(); err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = errs.Append(fe.Field, fe.Err)
			}
		} else {
			errs = errs.Append("", err)
		}
	} else {
		detail := c.Storage.Backend
		if c.Storage.Backend == BackendSQLite {
			detail += " at " + c.DatabasePath()
		}
		checks = append(checks,
			Check{Label: "storage", Detail: detail, OK: true},
			Check{Label: "reply timeout", Detail: c.Dispatch.ReplyTimeout.String(), OK: true},
		)
	}

	return checks, errs.ToError()
}
