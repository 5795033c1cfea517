package graph

import (
	"testing"

	"github.com/skridlevsky/codex/node"
)

// --- Helpers ---

// newGraph builds a Graph from a simple adjacency list of node keys.
// edges: map of "source" -> ["target1", "target2"]
// Keys below "1-journal/" count as journal entries.
func newGraph(edges map[string][]string) *Graph {
	all := make(map[string]*node.Node)
	get := func(key string) *node.Node {
		if n, ok := all[key]; ok {
			return n
		}
		n := &node.Node{
			ID:        key,
			Parent:    node.ParentKey(key),
			Links:     make(map[string]node.Link),
			Backlinks: make(map[node.BacklinkKey]node.Link),
			Tags:      make(map[string]bool),
		}
		all[key] = n
		return n
	}
	var ts int64
	for src, targets := range edges {
		s := get(src)
		for _, tgt := range targets {
			ts++
			link, backlink := node.Pair(tgt, src, 0, 0, tgt, 0, 0, ts)
			s.InsertLink(link)
			get(tgt).InsertBacklink(backlink)
		}
	}
	nodes := make([]*node.Node, 0, len(all))
	for _, n := range all {
		nodes = append(nodes, n)
	}
	return FromNodes(nodes, "1-journal")
}

// --- Degree ---

func TestOutDegree(t *testing.T) {
	g := newGraph(map[string][]string{
		"1-a": {"2-b", "3-c"},
		"2-b": {"3-c"},
	})
	if d := g.OutDegree("1-a"); d != 2 {
		t.Errorf("OutDegree(1-a) = %d, want 2", d)
	}
	if d := g.OutDegree("3-c"); d != 0 {
		t.Errorf("OutDegree(3-c) = %d, want 0", d)
	}
}

func TestInDegree(t *testing.T) {
	g := newGraph(map[string][]string{
		"1-a": {"3-c"},
		"2-b": {"3-c"},
	})
	if d := g.InDegree("3-c"); d != 2 {
		t.Errorf("InDegree(3-c) = %d, want 2", d)
	}
	if d := g.InDegree("1-a"); d != 0 {
		t.Errorf("InDegree(1-a) = %d, want 0", d)
	}
}

func TestTotalDegree(t *testing.T) {
	g := newGraph(map[string][]string{
		"1-a": {"2-b"},
		"2-b": {"1-a", "3-c"},
	})
	if d := g.TotalDegree("2-b"); d != 3 {
		t.Errorf("TotalDegree(2-b) = %d, want 3", d)
	}
}

func TestDegree_NonExistentNode(t *testing.T) {
	g := newGraph(map[string][]string{"1-a": {"2-b"}})
	if d := g.TotalDegree("9-nope"); d != 0 {
		t.Errorf("TotalDegree(9-nope) = %d, want 0", d)
	}
}

func TestFromNodes_UsesLinksNotBacklinks(t *testing.T) {
	n := &node.Node{ID: "1-a", Backlinks: map[node.BacklinkKey]node.Link{
		{Text: "x", Timestamp: 1}: {Target: "2-b", Text: "x", Timestamp: 1},
	}}
	g := FromNodes([]*node.Node{n}, "")
	if g.InDegree("1-a") != 0 {
		t.Errorf("a backlink without its link should not create an edge")
	}
}

func TestDisplayName(t *testing.T) {
	g := newGraph(map[string][]string{"2-desk/1-cool-jazz": {}})
	if got := g.DisplayName("2-desk/1-cool-jazz"); got != "desk / cool jazz" {
		t.Errorf("DisplayName = %q", got)
	}
	if got := g.DisplayName("3-missing-node"); got != "missing node" {
		t.Errorf("DisplayName(missing) = %q", got)
	}
}

// --- Overview ---

func TestOverview_Empty(t *testing.T) {
	g := newGraph(map[string][]string{})
	stats := g.Overview()
	if stats.TotalNodes != 0 || stats.TotalLinks != 0 {
		t.Errorf("empty overview = %+v", stats)
	}
	if stats.MostConnected == nil {
		t.Error("MostConnected should be an empty list")
	}
}

func TestOverview_Basic(t *testing.T) {
	g := newGraph(map[string][]string{
		"2-desk/1-a": {"2-desk/2-b", "3-area/1-c"},
		"2-desk/2-b": {"3-area/1-c"},
		"2-desk":     {},
		"3-area":     {},
	})
	stats := g.Overview()
	if stats.TotalNodes != 5 {
		t.Errorf("TotalNodes = %d, want 5", stats.TotalNodes)
	}
	if stats.TotalLinks != 3 {
		t.Errorf("TotalLinks = %d, want 3", stats.TotalLinks)
	}
	if stats.Roots["desk"] != 3 || stats.Roots["area"] != 2 {
		t.Errorf("Roots = %v", stats.Roots)
	}
	if stats.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", stats.MaxDepth)
	}
}

func TestOverview_CountsJournalEntries(t *testing.T) {
	g := newGraph(map[string][]string{
		"1-journal/1-Mon": {},
		"1-journal/2-Tue": {},
		"1-journal":       {},
		"2-desk":          {},
	})
	if n := g.Overview().JournalEntries; n != 2 {
		t.Errorf("JournalEntries = %d, want 2", n)
	}
}

func TestOverview_CountsOrphans(t *testing.T) {
	g := newGraph(map[string][]string{
		"1-a": {"2-b"},
		"3-c": {},
		"4-d": {},
	})
	if n := g.Overview().OrphanNodes; n != 2 {
		t.Errorf("OrphanNodes = %d, want 2", n)
	}
}

func TestOverview_MostConnectedOrder(t *testing.T) {
	g := newGraph(map[string][]string{
		"1-hub": {"2-a", "3-b", "4-c"},
		"2-a":   {"1-hub"},
	})
	stats := g.Overview()
	if len(stats.MostConnected) == 0 || stats.MostConnected[0].ID != "1-hub" {
		t.Fatalf("MostConnected = %+v, want 1-hub first", stats.MostConnected)
	}
	if stats.MostConnected[0].TotalDegree != 4 {
		t.Errorf("hub degree = %d, want 4", stats.MostConnected[0].TotalDegree)
	}
}

func TestOverview_MostLinkedToOrder(t *testing.T) {
	g := newGraph(map[string][]string{
		"1-a": {"9-popular"},
		"2-b": {"9-popular"},
		"3-c": {"9-popular", "4-d"},
	})
	stats := g.Overview()
	if stats.MostLinkedTo[0].ID != "9-popular" || stats.MostLinkedTo[0].InLinks != 3 {
		t.Errorf("MostLinkedTo[0] = %+v", stats.MostLinkedTo[0])
	}
}

func TestOverview_CapsAtTen(t *testing.T) {
	edges := map[string][]string{}
	for _, k := range []string{"01-a", "02-b", "03-c", "04-d", "05-e", "06-f", "07-g", "08-h", "09-i", "10-j", "11-k", "12-l"} {
		edges[k] = []string{"99-target"}
	}
	stats := newGraph(edges).Overview()
	if len(stats.MostConnected) != 10 || len(stats.MostLinkedTo) != 10 {
		t.Errorf("got %d / %d entries, want 10 / 10", len(stats.MostConnected), len(stats.MostLinkedTo))
	}
}

// --- FindConnections ---

func TestFindConnections_DirectLink(t *testing.T) {
	g := newGraph(map[string][]string{"1-a": {"2-b"}})
	r := g.FindConnections("1-a", "2-b", 0)
	if !r.DirectlyLinked {
		t.Error("expected direct link")
	}
	if len(r.Paths) != 1 || len(r.Paths[0]) != 2 {
		t.Errorf("Paths = %v, want [[1-a 2-b]]", r.Paths)
	}
}

func TestFindConnections_DirectionMatters(t *testing.T) {
	g := newGraph(map[string][]string{"1-a": {"2-b"}})
	r := g.FindConnections("2-b", "1-a", 0)
	if r.DirectlyLinked {
		t.Error("backward edge reported as direct link")
	}
	if len(r.Paths) != 0 {
		t.Errorf("Paths = %v, want none", r.Paths)
	}
}

func TestFindConnections_FindsPath(t *testing.T) {
	g := newGraph(map[string][]string{
		"1-a": {"2-b"},
		"2-b": {"3-c"},
		"3-c": {"4-d"},
	})
	r := g.FindConnections("1-a", "4-d", 5)
	if len(r.Paths) != 1 {
		t.Fatalf("Paths = %v, want 1 path", r.Paths)
	}
	want := []string{"1-a", "2-b", "3-c", "4-d"}
	for i, k := range want {
		if r.Paths[0][i] != k {
			t.Errorf("Paths[0][%d] = %q, want %q", i, r.Paths[0][i], k)
		}
	}
}

func TestFindConnections_MaxDepth(t *testing.T) {
	g := newGraph(map[string][]string{
		"1-a": {"2-b"},
		"2-b": {"3-c"},
		"3-c": {"4-d"},
	})
	if r := g.FindConnections("1-a", "4-d", 2); len(r.Paths) != 0 {
		t.Errorf("Paths = %v, want none within depth 2", r.Paths)
	}
}

func TestFindConnections_SharedConnections(t *testing.T) {
	g := newGraph(map[string][]string{
		"1-a": {"3-shared"},
		"2-b": {"3-shared"},
		"4-x": {"1-a", "2-b"},
	})
	r := g.FindConnections("1-a", "2-b", 0)
	if len(r.SharedConnections) != 2 || r.SharedConnections[0] != "3-shared" || r.SharedConnections[1] != "4-x" {
		t.Errorf("SharedConnections = %v, want [3-shared 4-x]", r.SharedConnections)
	}
}

// --- KnowledgeGaps ---

func TestKnowledgeGaps_OrphansAndDeadEnds(t *testing.T) {
	g := newGraph(map[string][]string{
		"2-desk/1-a": {"2-desk/2-b"},
		"2-desk/3-c": {},
	})
	gaps := g.KnowledgeGaps()
	if len(gaps.OrphanNodes) != 1 || gaps.OrphanNodes[0] != "2-desk/3-c" {
		t.Errorf("OrphanNodes = %v", gaps.OrphanNodes)
	}
	if len(gaps.DeadEndNodes) != 1 || gaps.DeadEndNodes[0] != "2-desk/2-b" {
		t.Errorf("DeadEndNodes = %v", gaps.DeadEndNodes)
	}
}

func TestKnowledgeGaps_WeaklyLinked(t *testing.T) {
	g := newGraph(map[string][]string{
		"1-a": {"2-b"},
		"2-b": {"1-a"},
		"3-c": {"1-a", "2-b", "4-d"},
		"4-d": {"3-c"},
	})
	gaps := g.KnowledgeGaps()
	if len(gaps.WeaklyLinked) != 1 || gaps.WeaklyLinked[0].ID != "4-d" {
		t.Errorf("WeaklyLinked = %+v, want [4-d]", gaps.WeaklyLinked)
	}
}

func TestKnowledgeGaps_SkipsJournalAndParents(t *testing.T) {
	edges := map[string][]string{
		"1-journal/1-Mon": {},
		"1-journal":       {},
		"2-desk/1-a":      {},
	}
	g := newGraph(edges)
	g.Nodes["2-desk"] = &node.Node{ID: "2-desk", Children: []string{"2-desk/1-a"}}
	gaps := g.KnowledgeGaps()
	if len(gaps.OrphanNodes) != 1 || gaps.OrphanNodes[0] != "2-desk/1-a" {
		t.Errorf("OrphanNodes = %v, want [2-desk/1-a]", gaps.OrphanNodes)
	}
}

// --- TopicClusters ---

func TestTopicClusters_TwoClusters(t *testing.T) {
	g := newGraph(map[string][]string{
		"1-a": {"2-b"},
		"2-b": {"3-c"},
		"4-x": {"5-y"},
		"6-z": {},
	})
	clusters := g.TopicClusters()
	if len(clusters) != 2 {
		t.Fatalf("clusters = %+v, want 2", clusters)
	}
	if clusters[0].Size != 3 || clusters[1].Size != 2 {
		t.Errorf("sizes = %d, %d, want 3, 2", clusters[0].Size, clusters[1].Size)
	}
	if clusters[0].ID != 0 || clusters[1].ID != 1 {
		t.Errorf("IDs not sequential after sorting")
	}
}

func TestTopicClusters_HubIsHighestDegree(t *testing.T) {
	g := newGraph(map[string][]string{
		"1-a":   {"9-hub"},
		"2-b":   {"9-hub"},
		"3-c":   {"9-hub"},
		"9-hub": {"1-a"},
	})
	clusters := g.TopicClusters()
	if len(clusters) != 1 || clusters[0].Hub != "9-hub" {
		t.Errorf("clusters = %+v, want hub 9-hub", clusters)
	}
}

func TestTopicClusters_SkipsJournalEntries(t *testing.T) {
	g := newGraph(map[string][]string{
		"1-journal/1-Mon": {"2-desk/1-a"},
		"1-journal/2-Tue": {"2-desk/2-b"},
	})
	if clusters := g.TopicClusters(); len(clusters) != 0 {
		t.Errorf("clusters = %+v, want none", clusters)
	}
}

func TestTopicClusters_NodesSorted(t *testing.T) {
	g := newGraph(map[string][]string{
		"3-c": {"1-a"},
		"1-a": {"2-b"},
	})
	clusters := g.TopicClusters()
	if len(clusters) != 1 {
		t.Fatalf("clusters = %+v", clusters)
	}
	want := []string{"1-a", "2-b", "3-c"}
	for i, k := range want {
		if clusters[0].Nodes[i] != k {
			t.Errorf("Nodes[%d] = %q, want %q", i, clusters[0].Nodes[i], k)
		}
	}
}
