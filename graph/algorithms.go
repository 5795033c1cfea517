package graph

import (
	"sort"
	"strings"

	"github.com/skridlevsky/codex/node"
)

// OverviewStats contains global graph statistics.
type OverviewStats struct {
	TotalNodes     int            `json:"totalNodes"`
	TotalLinks     int            `json:"totalLinks"`
	JournalEntries int            `json:"journalEntries"`
	OrphanNodes    int            `json:"orphanNodes"`
	MaxDepth       int            `json:"maxDepth"`
	MostConnected  []NodeStat     `json:"mostConnected"`
	MostLinkedTo   []NodeStat     `json:"mostLinkedTo"`
	Roots          map[string]int `json:"roots"` // root display name -> nodes in its subtree
}

// NodeStat is a node with its connectivity score.
type NodeStat struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	OutLinks    int    `json:"outLinks"`
	InLinks     int    `json:"inLinks"`
	TotalDegree int    `json:"totalDegree"`
	Children    int    `json:"children"`
}

// ConnectionResult describes how two nodes are connected.
type ConnectionResult struct {
	From              string     `json:"from"`
	To                string     `json:"to"`
	DirectlyLinked    bool       `json:"directlyLinked"`
	Paths             [][]string `json:"paths"`
	SharedConnections []string   `json:"sharedConnections"`
}

// GapInfo describes sparse areas of the graph.
type GapInfo struct {
	OrphanNodes  []string   `json:"orphanNodes"`
	DeadEndNodes []string   `json:"deadEndNodes"`
	WeaklyLinked []NodeStat `json:"weaklyLinked"`
}

// Cluster is a group of connected nodes.
type Cluster struct {
	ID    int      `json:"id"`
	Size  int      `json:"size"`
	Nodes []string `json:"nodes"`
	Hub   string   `json:"hub"`
}

func (g *Graph) stat(key string) NodeStat {
	out, in := g.OutDegree(key), g.InDegree(key)
	var children int
	if n, ok := g.Nodes[key]; ok {
		children = len(n.Children)
	}
	return NodeStat{
		ID:          key,
		Name:        g.DisplayName(key),
		OutLinks:    out,
		InLinks:     in,
		TotalDegree: out + in,
		Children:    children,
	}
}

// Overview computes global graph statistics.
func (g *Graph) Overview() OverviewStats {
	stats := OverviewStats{
		TotalNodes: len(g.Nodes),
		Roots:      make(map[string]int),
	}

	var nodeStats []NodeStat
	for key := range g.Nodes {
		if g.IsJournalEntry(key) {
			stats.JournalEntries++
		}

		s := g.stat(key)
		stats.TotalLinks += s.OutLinks
		if s.TotalDegree == 0 {
			stats.OrphanNodes++
		}
		nodeStats = append(nodeStats, s)

		root, _, _ := strings.Cut(key, "/")
		stats.Roots[node.DisplayName(root)]++
		if d := strings.Count(key, "/") + 1; d > stats.MaxDepth {
			stats.MaxDepth = d
		}
	}

	// Ties resolve by key so output is stable.
	sort.Slice(nodeStats, func(i, j int) bool {
		if nodeStats[i].TotalDegree != nodeStats[j].TotalDegree {
			return nodeStats[i].TotalDegree > nodeStats[j].TotalDegree
		}
		return nodeStats[i].ID < nodeStats[j].ID
	})
	stats.MostConnected = append([]NodeStat{}, nodeStats[:min(10, len(nodeStats))]...)

	sort.Slice(nodeStats, func(i, j int) bool {
		if nodeStats[i].InLinks != nodeStats[j].InLinks {
			return nodeStats[i].InLinks > nodeStats[j].InLinks
		}
		return nodeStats[i].ID < nodeStats[j].ID
	})
	stats.MostLinkedTo = nodeStats[:min(10, len(nodeStats))]

	return stats
}

// FindConnections finds how two nodes are connected.
func (g *Graph) FindConnections(from, to string, maxDepth int) ConnectionResult {
	if maxDepth <= 0 {
		maxDepth = 5
	}

	result := ConnectionResult{
		From:           from,
		To:             to,
		DirectlyLinked: g.Forward[from][to],
		Paths:          g.bfsPaths(from, to, maxDepth),
	}

	// Shared connections: nodes adjacent to both, in either direction
	fromNeighbors := g.allNeighbors(from)
	toNeighbors := g.allNeighbors(to)
	for n := range fromNeighbors {
		if toNeighbors[n] && n != from && n != to {
			result.SharedConnections = append(result.SharedConnections, n)
		}
	}
	sort.Strings(result.SharedConnections)

	return result
}

// KnowledgeGaps finds sparse areas in the graph. Journal entries and
// structural nodes with children are not expected to carry links and are
// skipped.
func (g *Graph) KnowledgeGaps() GapInfo {
	var gaps GapInfo
	var weakStats []NodeStat

	for key, n := range g.Nodes {
		if g.IsJournalEntry(key) || key == g.Journal || len(n.Children) > 0 {
			continue
		}

		s := g.stat(key)
		switch {
		case s.TotalDegree == 0:
			gaps.OrphanNodes = append(gaps.OrphanNodes, key)
		case s.OutLinks == 0:
			gaps.DeadEndNodes = append(gaps.DeadEndNodes, key)
		case s.TotalDegree <= 2:
			weakStats = append(weakStats, s)
		}
	}

	sort.Strings(gaps.OrphanNodes)
	sort.Strings(gaps.DeadEndNodes)
	sort.Slice(weakStats, func(i, j int) bool {
		if weakStats[i].TotalDegree != weakStats[j].TotalDegree {
			return weakStats[i].TotalDegree < weakStats[j].TotalDegree
		}
		return weakStats[i].ID < weakStats[j].ID
	})
	gaps.WeaklyLinked = weakStats[:min(20, len(weakStats))]

	return gaps
}

// TopicClusters finds connected components in the undirected link graph.
func (g *Graph) TopicClusters() []Cluster {
	visited := make(map[string]bool)
	var clusters []Cluster

	keys := make([]string, 0, len(g.Nodes))
	for key := range g.Nodes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if visited[key] {
			continue
		}
		if g.IsJournalEntry(key) {
			visited[key] = true
			continue
		}

		component := g.bfsComponent(key, visited)
		if len(component) < 2 {
			continue // skip singletons
		}
		sort.Strings(component)

		// Hub is the highest degree node; the lowest key wins ties.
		hub := component[0]
		hubDegree := g.TotalDegree(hub)
		for _, n := range component[1:] {
			if d := g.TotalDegree(n); d > hubDegree {
				hub = n
				hubDegree = d
			}
		}

		clusters = append(clusters, Cluster{
			Size:  len(component),
			Nodes: component,
			Hub:   hub,
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Size > clusters[j].Size
	})
	for i := range clusters {
		clusters[i].ID = i
	}
	return clusters
}

// --- Internal helpers ---

func (g *Graph) bfsPaths(from, to string, maxDepth int) [][]string {
	type step struct {
		key  string
		path []string
	}

	queue := []step{{key: from, path: []string{from}}}
	visited := map[string]bool{from: true}
	var paths [][]string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if len(current.path) > maxDepth+1 {
			break
		}

		for _, linked := range sortedSet(g.Forward[current.key]) {
			if linked == to {
				path := make([]string, len(current.path)+1)
				copy(path, current.path)
				path[len(path)-1] = linked
				paths = append(paths, path)
				if len(paths) >= 10 {
					return paths
				}
				continue
			}

			if !visited[linked] && len(current.path) < maxDepth {
				visited[linked] = true
				next := make([]string, len(current.path)+1)
				copy(next, current.path)
				next[len(next)-1] = linked
				queue = append(queue, step{key: linked, path: next})
			}
		}
	}

	return paths
}

func (g *Graph) bfsComponent(start string, visited map[string]bool) []string {
	queue := []string{start}
	visited[start] = true
	var component []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		component = append(component, current)

		for n := range g.allNeighbors(current) {
			if visited[n] || g.IsJournalEntry(n) {
				continue
			}
			if _, exists := g.Nodes[n]; exists {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}

	return component
}

func (g *Graph) allNeighbors(key string) map[string]bool {
	neighbors := make(map[string]bool)
	for linked := range g.Forward[key] {
		neighbors[linked] = true
	}
	for linker := range g.Backward[key] {
		neighbors[linker] = true
	}
	return neighbors
}

func sortedSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
