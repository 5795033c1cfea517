package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/skridlevsky/codex/node"
)

func testNode() *node.Node {
	n := &node.Node{
		ID:        "2-desk/1-cool-jazz",
		Name:      "cool jazz",
		Parent:    "2-desk",
		Links:     map[string]node.Link{},
		Backlinks: map[node.BacklinkKey]node.Link{},
		Tags:      map[string]bool{"music": true, "area": true},
		Created:   time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
		Updated:   time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC),
		Updates:   2,
	}
	n.InsertLink(node.Link{Target: "1-journal", Text: "zeta", Timestamp: 2})
	n.InsertLink(node.Link{Target: "2-desk/2-b", Text: "b", Timestamp: 1, NameLinked: true})
	n.InsertBacklink(node.Link{Target: "1-journal", Text: "jazz", Timestamp: 9})
	n.InsertBacklink(node.Link{Target: "2-desk/2-b", Text: "jazz", Timestamp: 3})
	return n
}

func TestView(t *testing.T) {
	v := View(testNode())

	if v.DisplayName != "desk / cool jazz" {
		t.Errorf("DisplayName = %q", v.DisplayName)
	}
	if len(v.Tags) != 2 || v.Tags[0] != "area" || v.Tags[1] != "music" {
		t.Errorf("Tags = %v, want sorted [area music]", v.Tags)
	}
	if len(v.Links) != 2 || v.Links[0].Text != "b" || !v.Links[0].NameRef {
		t.Errorf("Links = %+v", v.Links)
	}
	if len(v.Backlinks) != 2 || v.Backlinks[0].Timestamp != 3 || v.Backlinks[1].Node != "1-journal" {
		t.Errorf("Backlinks = %+v", v.Backlinks)
	}
	if v.Children == nil {
		t.Error("Children should encode as an empty list, not null")
	}
}

func TestView_JSONOmitsEmptyContent(t *testing.T) {
	data, err := json.Marshal(View(testNode()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["content"]; ok {
		t.Error("content present without a body")
	}
	if m["parent"] != "2-desk" {
		t.Errorf("parent = %v", m["parent"])
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(testNode())
	if s.Links != 2 || s.Backlinks != 2 || s.Children != 0 {
		t.Errorf("Summarize = %+v", s)
	}
}
