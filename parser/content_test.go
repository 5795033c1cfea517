package parser

import (
	"testing"
)

// --- Parse (integration) ---

func TestParse_Empty(t *testing.T) {
	r := Parse("")
	if r.Raw != "" {
		t.Errorf("Raw = %q, want empty", r.Raw)
	}
	if r.Heading != "" {
		t.Errorf("Heading = %q, want empty", r.Heading)
	}
	if len(r.Links) != 0 {
		t.Errorf("Links = %v, want empty", r.Links)
	}
	if len(r.Tags) != 0 {
		t.Errorf("Tags = %v, want empty", r.Tags)
	}
	if len(r.OpenTodos) != 0 {
		t.Errorf("OpenTodos = %v, want empty", r.OpenTodos)
	}
}

func TestParse_AllFeatures(t *testing.T) {
	content := "# Sat Mar 02 2024\n\n- [] call [[dentist]] #health\n- [x] water plants\n  - [] nested\n"
	r := Parse(content)

	if r.Raw != content {
		t.Errorf("Raw mismatch")
	}
	if r.Heading != "Sat Mar 02 2024" {
		t.Errorf("Heading = %q", r.Heading)
	}
	if len(r.Links) != 1 || r.Links[0] != "dentist" {
		t.Errorf("Links = %v, want [dentist]", r.Links)
	}
	if len(r.Tags) != 1 || r.Tags[0] != "health" {
		t.Errorf("Tags = %v, want [health]", r.Tags)
	}
	if len(r.OpenTodos) != 2 {
		t.Errorf("OpenTodos = %v, want 2", r.OpenTodos)
	}
	if r.DoneTodos != 1 {
		t.Errorf("DoneTodos = %d, want 1", r.DoneTodos)
	}
}

// --- Heading ---

func TestHeading_FirstOnly(t *testing.T) {
	r := Parse("# first\ntext\n# second\n")
	if r.Heading != "first" {
		t.Errorf("Heading = %q, want first", r.Heading)
	}
}

func TestHeading_SubheadingIgnored(t *testing.T) {
	r := Parse("## not a title\n")
	if r.Heading != "" {
		t.Errorf("Heading = %q, want empty", r.Heading)
	}
}

// --- Links ---

func TestLinks_Multiple(t *testing.T) {
	r := Parse("[[A]] links to [[B]] and [[C]]")
	want := []string{"A", "B", "C"}
	if len(r.Links) != len(want) {
		t.Fatalf("Links = %v, want %v", r.Links, want)
	}
	for i, l := range r.Links {
		if l != want[i] {
			t.Errorf("Links[%d] = %q, want %q", i, l, want[i])
		}
	}
}

func TestLinks_Deduplicate(t *testing.T) {
	r := Parse("[[Page]] and again [[Page]]")
	if len(r.Links) != 1 {
		t.Errorf("Links = %v, want 1 deduplicated entry", r.Links)
	}
}

func TestLinks_KeyPath(t *testing.T) {
	r := Parse("see [[2-desk/1-cool-jazz]]")
	if len(r.Links) != 1 || r.Links[0] != "2-desk/1-cool-jazz" {
		t.Errorf("Links = %v", r.Links)
	}
}

// --- Tags ---

func TestTags_HeadingIsNotTag(t *testing.T) {
	r := Parse("# title\nbody #real")
	if len(r.Tags) != 1 || r.Tags[0] != "real" {
		t.Errorf("Tags = %v, want [real]", r.Tags)
	}
}

func TestTags_NoWordBoundary(t *testing.T) {
	r := Parse("email@example.com#notag")
	if len(r.Tags) != 0 {
		t.Errorf("Tags = %v, want empty", r.Tags)
	}
}

func TestTags_Deduplicate(t *testing.T) {
	r := Parse("#a #b #a")
	if len(r.Tags) != 2 {
		t.Errorf("Tags = %v, want [a b]", r.Tags)
	}
}

// --- Open todos ---

func TestOpenTodos(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"none", "# t\nnothing\n", nil},
		{"plain", "- [] a\n", []string{"- [] a"}},
		{"indented space", "  - [] b\n", []string{"  - [] b"}},
		{"indented tab", "\t- [] c\n", []string{"\t- [] c"}},
		{"done skipped", "- [x] d\n- [] e\n", []string{"- [] e"}},
		{"needs space after box", "- []f\n", nil},
		{"not mid line", "text - [] g\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OpenTodos(tt.content)
			if len(got) != len(tt.want) {
				t.Fatalf("OpenTodos = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("OpenTodos[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// --- StripHeading ---

func TestStripHeading(t *testing.T) {
	if got := StripHeading("# t\nbody\n"); got != "body\n" {
		t.Errorf("StripHeading = %q", got)
	}
	if got := StripHeading("body"); got != "body" {
		t.Errorf("StripHeading = %q", got)
	}
	if got := StripHeading("# only"); got != "" {
		t.Errorf("StripHeading = %q", got)
	}
}
