package graph

import (
	"strings"

	"github.com/skridlevsky/codex/backend"
	"github.com/skridlevsky/codex/node"
)

// Graph is an in-memory view of the link structure between nodes.
type Graph struct {
	// Forward links: node key -> set of linked node keys
	Forward map[string]map[string]bool
	// Backward links: node key -> set of keys that link to it
	Backward map[string]map[string]bool
	// Nodes: key -> node
	Nodes map[string]*node.Node
	// Journal is the key of the journal anchor, "" when there is none.
	Journal string
}

// Build snapshots the store and constructs the link graph.
func Build(r backend.Reader) *Graph {
	journal, _ := r.Journal()
	return FromNodes(r.Snapshot(), journal)
}

// FromNodes constructs the link graph from a set of nodes. Links to keys
// outside the set are kept as edges but never become nodes.
func FromNodes(nodes []*node.Node, journal string) *Graph {
	g := &Graph{
		Forward:  make(map[string]map[string]bool),
		Backward: make(map[string]map[string]bool),
		Nodes:    make(map[string]*node.Node),
		Journal:  journal,
	}
	for _, n := range nodes {
		g.Nodes[n.ID] = n
		// Ensure entries exist even for nodes with no links
		if g.Forward[n.ID] == nil {
			g.Forward[n.ID] = make(map[string]bool)
		}
		for _, l := range n.Links {
			g.Forward[n.ID][l.Target] = true
			if g.Backward[l.Target] == nil {
				g.Backward[l.Target] = make(map[string]bool)
			}
			g.Backward[l.Target][n.ID] = true
		}
	}
	return g
}

// OutDegree returns the number of distinct nodes key links to.
func (g *Graph) OutDegree(key string) int {
	return len(g.Forward[key])
}

// InDegree returns the number of distinct nodes linking to key.
func (g *Graph) InDegree(key string) int {
	return len(g.Backward[key])
}

// TotalDegree returns outgoing + incoming link count for a node.
func (g *Graph) TotalDegree(key string) int {
	return g.OutDegree(key) + g.InDegree(key)
}

// DisplayName returns the human form of key.
func (g *Graph) DisplayName(key string) string {
	if n, ok := g.Nodes[key]; ok {
		return n.DisplayName()
	}
	return node.DisplayName(key)
}

// IsJournalEntry reports whether key sits below the journal anchor.
func (g *Graph) IsJournalEntry(key string) bool {
	return g.Journal != "" && strings.HasPrefix(key, g.Journal+"/")
}
