package types

import (
	"sort"
	"time"

	"github.com/skridlevsky/codex/node"
)

// NodeSummary is a lightweight node representation for listings.
type NodeSummary struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Tags        []string  `json:"tags,omitempty"`
	Children    int       `json:"children"`
	Links       int       `json:"links"`
	Backlinks   int       `json:"backlinks"`
	Updated     time.Time `json:"updated"`
}

// LinkView is one link or backlink as shown to clients. Node is the other end.
type LinkView struct {
	Text      string `json:"text"`
	Node      string `json:"node"`
	Timestamp int64  `json:"timestamp"`
	Line      uint64 `json:"line"`
	Char      uint64 `json:"char"`
	NameRef   bool   `json:"nameRef"`
}

// NodeView is a node with its relations and, optionally, its parsed body.
type NodeView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	DisplayName string         `json:"displayName"`
	Parent      string         `json:"parent,omitempty"`
	Children    []string       `json:"children"`
	Tags        []string       `json:"tags"`
	Links       []LinkView     `json:"links"`
	Backlinks   []LinkView     `json:"backlinks"`
	Created     time.Time      `json:"created"`
	Updated     time.Time      `json:"updated"`
	Updates     int64          `json:"updates"`
	Content     *ParsedContent `json:"content,omitempty"`
}

// ParsedContent holds structured data extracted from a node's body.
type ParsedContent struct {
	Raw        string         `json:"raw"`
	Properties map[string]any `json:"properties,omitempty"` // YAML frontmatter
	Heading    string         `json:"heading,omitempty"`
	Links      []string       `json:"links"`     // [[target]]
	Tags       []string       `json:"tags"`      // #tag
	OpenTodos  []string       `json:"openTodos"` // - [] item
	DoneTodos  int            `json:"doneTodos"`
}

// Summarize builds a NodeSummary.
func Summarize(n *node.Node) NodeSummary {
	return NodeSummary{
		ID:          n.ID,
		DisplayName: n.DisplayName(),
		Tags:        n.SortedTags(),
		Children:    len(n.Children),
		Links:       len(n.Links),
		Backlinks:   len(n.Backlinks),
		Updated:     n.Updated,
	}
}

// View builds a NodeView without content. Links are ordered by text,
// backlinks by text and then timestamp.
func View(n *node.Node) NodeView {
	v := NodeView{
		ID:          n.ID,
		Name:        n.Name,
		DisplayName: n.DisplayName(),
		Parent:      n.Parent,
		Children:    append([]string{}, n.Children...),
		Tags:        n.SortedTags(),
		Links:       make([]LinkView, 0, len(n.Links)),
		Backlinks:   make([]LinkView, 0, len(n.Backlinks)),
		Created:     n.Created,
		Updated:     n.Updated,
		Updates:     n.Updates,
	}
	for _, l := range n.Links {
		v.Links = append(v.Links, linkView(l))
	}
	for _, bl := range n.Backlinks {
		v.Backlinks = append(v.Backlinks, linkView(bl))
	}
	sortLinks(v.Links)
	sortLinks(v.Backlinks)
	return v
}

func linkView(l node.Link) LinkView {
	return LinkView{
		Text:      l.Text,
		Node:      l.Target,
		Timestamp: l.Timestamp,
		Line:      l.Line,
		Char:      l.Char,
		NameRef:   l.NameLinked,
	}
}

func sortLinks(ls []LinkView) {
	sort.Slice(ls, func(i, j int) bool {
		if ls[i].Text != ls[j].Text {
			return ls[i].Text < ls[j].Text
		}
		return ls[i].Timestamp < ls[j].Timestamp
	})
}
