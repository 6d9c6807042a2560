package tmpl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	created := time.Date(2026, 5, 4, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		tmpl    string
		data    any
		want    string
		wantErr bool
	}{
		{
			name: "simple substitution",
			tmpl: "hello {{ .Name }}",
			data: map[string]string{"Name": "world"},
			want: "hello world",
		},
		{
			name: "struct data",
			tmpl: "{{ .Name }} ({{ .ID }})",
			data: struct {
				Name string
				ID   string
			}{Name: "payments", ID: "42"},
			want: "payments (42)",
		},
		{
			name: "short id",
			tmpl: `{{ short 8 .ID }}`,
			data: map[string]string{"ID": "6f1c2a9e-7d11-4f6b-9c1e-0a5b3e2d8c77"},
			want: "6f1c2a9e",
		},
		{
			name: "short of shorter string",
			tmpl: `{{ short 8 .ID }}`,
			data: map[string]string{"ID": "abc"},
			want: "abc",
		},
		{
			name: "default date layout",
			tmpl: `{{ date "" .CreatedAt }}`,
			data: map[string]time.Time{"CreatedAt": created},
			want: "2026-05-04",
		},
		{
			name: "custom date layout",
			tmpl: `{{ date "Jan 2" .CreatedAt }}`,
			data: map[string]time.Time{"CreatedAt": created},
			want: "May 4",
		},
		{
			name: "case helpers",
			tmpl: `{{ upper .A }}{{ lower .B }}`,
			data: map[string]string{"A": "ab", "B": "CD"},
			want: "ABcd",
		},
		{
			name:    "missing key errors",
			tmpl:    "{{ .Missing }}",
			data:    map[string]string{},
			wantErr: true,
		},
		{
			name:    "invalid syntax",
			tmpl:    "{{ .Name",
			data:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_Reuse(t *testing.T) {
	tpl, err := Compile("{{ .N }}")
	require.NoError(t, err)

	for _, n := range []string{"a", "b"} {
		got, err := tpl.Render(map[string]string{"N": n})
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}
