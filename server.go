package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/skridlevsky/codex/backend"
	"github.com/skridlevsky/codex/tools"
	"github.com/skridlevsky/codex/tree"
)

var _ backend.Backend = (*tree.Tree)(nil)

// newServer creates and configures the MCP server with all tools registered.
// If readOnly is true, write tools are not registered.
func newServer(b backend.Backend, readOnly bool) *mcp.Server {
	srv := mcp.NewServer(
		&mcp.Implementation{
			Name:    "codex",
			Version: version,
		},
		nil,
	)

	nav := tools.NewNavigate(b)
	search := tools.NewSearch(b)
	analyze := tools.NewAnalyze(b)
	journal := tools.NewJournal(b)

	// --- Navigate tools ---
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_node",
		Description: "Get a node by key with its children, tags, links and backlinks. Keys look like 2-desk/1-cool-jazz. Set includeContent to also get the markdown body with its heading, [[links]], #tags and open todos extracted.",
	}, nav.GetNode)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_nodes",
		Description: "List the root nodes, the direct children of a parent, or every node carrying a tag. Returns node summaries in key order.",
	}, nav.ListNodes)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "next_sibling",
		Description: "Step to the next (or previous) sibling of a node, wrapping around at either end. A root node returns itself.",
	}, nav.NextSibling)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "nodes_by_recency",
		Description: "List nodes ordered by most recent update. Use to see what was worked on lately.",
	}, nav.Recent)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_links",
		Description: "Get the links a node holds and the backlinks pointing at it. Each entry carries its text, position, timestamp and whether it names the target.",
	}, nav.GetLinks)

	// --- Search tools ---
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search",
		Description: "Case-insensitive full-text search across node bodies. Returns matching lines with their node key and line number.",
	}, search.Search)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "find_by_tag",
		Description: "Find every node carrying a tag.",
	}, search.FindByTag)

	// --- Analyze tools ---
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "graph_overview",
		Description: "Global link-graph statistics: node and link counts, journal entries, orphans, depth, the most connected nodes and node counts per root.",
	}, analyze.GraphOverview)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "find_connections",
		Description: "Find how two nodes connect: direct links, link paths up to maxDepth hops and shared neighbours.",
	}, analyze.FindConnections)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "knowledge_gaps",
		Description: "Find leaf nodes with no links, nodes that only receive links, and weakly linked nodes. Journal entries and nodes with children are skipped.",
	}, analyze.KnowledgeGaps)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "topic_clusters",
		Description: "Group nodes into connected components of the link graph, each with its best-connected hub.",
	}, analyze.TopicClusters)

	// --- Journal tools ---
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "journal_search",
		Description: "Full-text search restricted to daily journal entries.",
	}, journal.JournalSearch)

	// --- Write tools ---
	if !readOnly {
		write := tools.NewWrite(b)

		mcp.AddTool(srv, &mcp.Tool{
			Name:        "create_node",
			Description: "Create a node under a parent key (or at the root). Returns the new key. Creating the 10th, 100th, ... child widens the sibling indices, so keys of existing siblings may change; re-read keys afterwards.",
		}, write.CreateNode)

		mcp.AddTool(srv, &mcp.Tool{
			Name:        "link_nodes",
			Description: "Link one node to another with a unique text per source node. The backlink is recorded on the target with the same timestamp. Reusing text on the same source re-points the link.",
		}, write.LinkNodes)

		mcp.AddTool(srv, &mcp.Tool{
			Name:        "tag_node",
			Description: "Add a tag to a node. The first node tagged journal or desk becomes that anchor.",
		}, write.TagNode)

		mcp.AddTool(srv, &mcp.Tool{
			Name:        "append",
			Description: "Append markdown to the end of a node's body.",
		}, write.Append)

		mcp.AddTool(srv, &mcp.Tool{
			Name:        "today",
			Description: "Get today's journal entry, creating it if needed. A new entry inherits the open todos (- [] ...) of the previous one.",
		}, journal.Today)

		srv.AddTool(&mcp.Tool{
			Name:        "reload",
			Description: "Re-read the whole tree from disk. Use after editing the data directory outside this server.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{},"required":[],"additionalProperties":false}`),
		}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if err := b.Load(); err != nil {
				return &mcp.CallToolResult{
					Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Reload failed: %v", err)}},
					IsError: true,
				}, nil
			}
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "Tree reloaded successfully"}},
			}, nil
		})
	}

	// --- Health tool ---
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "health",
		Description: "Check server status: version, data directory, read-only mode, node count and anchors.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
		journalKey, _ := b.Journal()
		deskKey, _ := b.Desk()

		data, _ := json.MarshalIndent(map[string]any{
			"status":    "ok",
			"version":   version,
			"root":      b.Dir(),
			"readOnly":  readOnly,
			"nodeCount": len(b.Snapshot()),
			"journal":   journalKey,
			"desk":      deskKey,
		}, "", "  ")

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil, nil
	})

	return srv
}
