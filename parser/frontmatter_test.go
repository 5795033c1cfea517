package parser

import (
	"reflect"
	"testing"
)

func TestFrontmatter(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantProps map[string]any
		wantBody  string
	}{
		{
			name:      "no frontmatter",
			input:     "# cool jazz\nSome content",
			wantProps: nil,
			wantBody:  "# cool jazz\nSome content",
		},
		{
			name:  "simple frontmatter",
			input: "---\nsource: radio\nstatus: active\n---\n# cool jazz\nContent here",
			wantProps: map[string]any{
				"source": "radio",
				"status": "active",
			},
			wantBody: "# cool jazz\nContent here",
		},
		{
			name:  "list and nested values",
			input: "---\nartists: [Davis, Coltrane]\nalbum:\n  year: 1959\n---\n# kind of blue",
			wantProps: map[string]any{
				"artists": []any{"Davis", "Coltrane"},
				"album":   map[string]any{"year": 1959},
			},
			wantBody: "# kind of blue",
		},
		{
			name:      "unclosed block is content",
			input:     "---\ntitle: Broken\n# No closing delimiter",
			wantProps: nil,
			wantBody:  "---\ntitle: Broken\n# No closing delimiter",
		},
		{
			name:      "empty block",
			input:     "---\n---\nContent only",
			wantProps: nil,
			wantBody:  "Content only",
		},
		{
			name:      "rule after heading is not frontmatter",
			input:     "# Title\n---\nstatus: active\n---",
			wantProps: nil,
			wantBody:  "# Title\n---\nstatus: active\n---",
		},
		{
			name:      "horizontal rule prefix is not frontmatter",
			input:     "----\nnot yaml\n---\n",
			wantProps: nil,
			wantBody:  "----\nnot yaml\n---\n",
		},
		{
			name:      "invalid yaml is content",
			input:     "---\n: [unbalanced\n---\nBody",
			wantProps: nil,
			wantBody:  "---\n: [unbalanced\n---\nBody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotProps, gotBody := Frontmatter(tt.input)
			if !reflect.DeepEqual(gotProps, tt.wantProps) {
				t.Errorf("props = %#v, want %#v", gotProps, tt.wantProps)
			}
			if gotBody != tt.wantBody {
				t.Errorf("body =\n%q\nwant\n%q", gotBody, tt.wantBody)
			}
		})
	}
}

func TestParse_Frontmatter(t *testing.T) {
	r := Parse("---\nmood: calm\n---\n# Sun Mar 03 2024\n- [] read #books\n")

	if r.Properties["mood"] != "calm" {
		t.Errorf("Properties = %v, want mood: calm", r.Properties)
	}
	if r.Heading != "Sun Mar 03 2024" {
		t.Errorf("Heading = %q", r.Heading)
	}
	if len(r.Tags) != 1 || r.Tags[0] != "books" {
		t.Errorf("Tags = %v, want [books]", r.Tags)
	}
	if len(r.OpenTodos) != 1 {
		t.Errorf("OpenTodos = %v, want one", r.OpenTodos)
	}
}
