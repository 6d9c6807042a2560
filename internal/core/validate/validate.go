// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
	"unicode"
)

const maxNameLength = 128

// ProjectName validates a project name is non-empty after trimming
// whitespace, fits on one line and contains no path separators.
func ProjectName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("name is required")
	}
	if len(trimmed) > maxNameLength {
		return fmt.Errorf("name exceeds %d characters", maxNameLength)
	}
	if strings.ContainsAny(trimmed, "/\\\n\r") {
		return fmt.Errorf("name %q contains a path separator or newline", trimmed)
	}
	return nil
}

// ID validates an item identifier: non-empty and free of whitespace.
func ID(id string) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if strings.IndexFunc(id, unicode.IsSpace) >= 0 {
		return fmt.Errorf("id %q contains whitespace", id)
	}
	return nil
}
