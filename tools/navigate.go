package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/skridlevsky/codex/backend"
	"github.com/skridlevsky/codex/node"
	"github.com/skridlevsky/codex/parser"
	"github.com/skridlevsky/codex/types"
)

// Navigate implements read-only navigation MCP tools.
type Navigate struct {
	store backend.Reader
}

// NewNavigate creates a new Navigate tool handler.
func NewNavigate(s backend.Reader) *Navigate {
	return &Navigate{store: s}
}

// GetNode returns a node with its links, backlinks and optionally its body.
func (n *Navigate) GetNode(ctx context.Context, req *mcp.CallToolRequest, input types.GetNodeInput) (*mcp.CallToolResult, any, error) {
	nd, ok := n.store.Get(input.ID)
	if !ok {
		return errorResult(fmt.Sprintf("node not found: %s", input.ID)), nil, nil
	}

	view := types.View(nd)
	if input.IncludeContent {
		body, err := n.store.Body(input.ID)
		if err != nil && !errors.Is(err, node.ErrNotFound) {
			return errorResult(fmt.Sprintf("read body of %s: %v", input.ID, err)), nil, nil
		}
		content := parser.Parse(body)
		view.Content = &content
	}

	res, err := jsonTextResult(view)
	return res, nil, err
}

// ListNodes lists the children of a node, the roots, or every node with a tag.
func (n *Navigate) ListNodes(ctx context.Context, req *mcp.CallToolRequest, input types.ListNodesInput) (*mcp.CallToolResult, any, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	var keys []string
	switch {
	case input.HasTag != "":
		for _, nd := range n.store.Snapshot() {
			if nd.HasTag(input.HasTag) {
				keys = append(keys, nd.ID)
			}
		}
		sort.Strings(keys)
	case input.Parent != "":
		parent, ok := n.store.Get(input.Parent)
		if !ok {
			return errorResult(fmt.Sprintf("node not found: %s", input.Parent)), nil, nil
		}
		keys = parent.Children
	default:
		keys = n.store.Roots()
	}

	summaries := make([]types.NodeSummary, 0, min(len(keys), limit))
	for _, key := range keys {
		if len(summaries) >= limit {
			break
		}
		if nd, ok := n.store.Get(key); ok {
			summaries = append(summaries, types.Summarize(nd))
		}
	}

	res, err := jsonTextResult(map[string]any{
		"count": len(summaries),
		"total": len(keys),
		"nodes": summaries,
	})
	return res, nil, err
}

// NextSibling steps to the next (or previous) sibling, wrapping around.
func (n *Navigate) NextSibling(ctx context.Context, req *mcp.CallToolRequest, input types.NextSiblingInput) (*mcp.CallToolResult, any, error) {
	key, err := n.store.NextSibling(input.ID, input.Previous)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}
	nd, ok := n.store.Get(key)
	if !ok {
		return errorResult(fmt.Sprintf("node not found: %s", key)), nil, nil
	}

	res, err := jsonTextResult(types.Summarize(nd))
	return res, nil, err
}

// Recent lists nodes by most recent update.
func (n *Navigate) Recent(ctx context.Context, req *mcp.CallToolRequest, input types.RecentInput) (*mcp.CallToolResult, any, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	nodes := n.store.NodesByRecency()
	if len(nodes) > limit {
		nodes = nodes[:limit]
	}
	summaries := make([]types.NodeSummary, len(nodes))
	for i, nd := range nodes {
		summaries[i] = types.Summarize(nd)
	}

	res, err := jsonTextResult(summaries)
	return res, nil, err
}

// GetLinks returns forward and/or backward links for a node.
func (n *Navigate) GetLinks(ctx context.Context, req *mcp.CallToolRequest, input types.GetLinksInput) (*mcp.CallToolResult, any, error) {
	nd, ok := n.store.Get(input.ID)
	if !ok {
		return errorResult(fmt.Sprintf("node not found: %s", input.ID)), nil, nil
	}

	direction := input.Direction
	if direction == "" {
		direction = "both"
	}

	view := types.View(nd)
	result := map[string]any{"id": nd.ID}
	switch direction {
	case "forward":
		result["links"] = view.Links
	case "backward":
		result["backlinks"] = view.Backlinks
	case "both":
		result["links"] = view.Links
		result["backlinks"] = view.Backlinks
	default:
		return errorResult(fmt.Sprintf("invalid direction %q: use forward, backward or both", input.Direction)), nil, nil
	}

	res, err := jsonTextResult(result)
	return res, nil, err
}
