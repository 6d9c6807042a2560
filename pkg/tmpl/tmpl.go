// Package tmpl renders user-supplied output templates for CLI listings.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// short returns the first n characters of s.
func short(n int, s string) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// date formats t in local time with layout, or time.DateOnly when layout is
// empty.
func date(layout string, t time.Time) string {
	if layout == "" {
		layout = time.DateOnly
	}
	return t.Local().Format(layout)
}

var funcs = template.FuncMap{
	"short": short,
	"date":  date,
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// Template is a compiled output template.
type Template struct {
	t *template.Template
}

// Compile parses text. References to undefined keys fail at render time.
//
// Available template functions:
//   - short N: first N characters of a string
//   - date LAYOUT: format a time.Time ("" means 2006-01-02)
//   - upper, lower: change case
func Compile(text string) (*Template, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &Template{t: t}, nil
}

// Render executes the template with data.
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// Render compiles and executes text with data in one step.
func Render(text string, data any) (string, error) {
	t, err := Compile(text)
	if err != nil {
		return "", err
	}
	return t.Render(data)
}
