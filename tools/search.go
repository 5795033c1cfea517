package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/skridlevsky/codex/backend"
	"github.com/skridlevsky/codex/index"
	"github.com/skridlevsky/codex/node"
	"github.com/skridlevsky/codex/types"
)

// Search implements search MCP tools.
type Search struct {
	store backend.Reader
}

// NewSearch creates a new Search tool handler.
func NewSearch(s backend.Reader) *Search {
	return &Search{store: s}
}

// SearchHit is one matching line.
type SearchHit struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Line        int    `json:"line"`
	Text        string `json:"text"`
}

// Search finds body lines containing every term of the query, best matches first.
func (s *Search) Search(ctx context.Context, req *mcp.CallToolRequest, input types.SearchInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(input.Query) == "" {
		return errorResult("query must not be empty"), nil, nil
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	hits := searchNodes(s.store, s.store.Snapshot(), input.Query, limit)
	if len(hits) == 0 {
		return textResult(fmt.Sprintf("No results for '%s'.", input.Query)), nil, nil
	}

	res, err := jsonTextResult(map[string]any{
		"query":   input.Query,
		"count":   len(hits),
		"results": hits,
	})
	return res, nil, err
}

// FindByTag returns every node carrying a tag.
func (s *Search) FindByTag(ctx context.Context, req *mcp.CallToolRequest, input types.FindByTagInput) (*mcp.CallToolResult, any, error) {
	if input.Tag == "" {
		return errorResult("tag must not be empty"), nil, nil
	}

	var found []types.NodeSummary
	for _, nd := range s.store.Snapshot() {
		if nd.HasTag(input.Tag) {
			found = append(found, types.Summarize(nd))
		}
	}
	if len(found) == 0 {
		return textResult(fmt.Sprintf("No nodes tagged '%s'.", input.Tag)), nil, nil
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })

	res, err := jsonTextResult(map[string]any{
		"tag":   input.Tag,
		"count": len(found),
		"nodes": found,
	})
	return res, nil, err
}

// searchNodes indexes the bodies of nodes and runs query against them.
// Bodies change outside the tree (editors write _.md directly), so the
// index is rebuilt from disk for every query.
func searchNodes(r backend.Reader, nodes []*node.Node, query string, limit int) []SearchHit {
	bodies := make(map[string]string, len(nodes))
	for _, nd := range nodes {
		body, err := r.Body(nd.ID)
		if err != nil {
			continue
		}
		bodies[nd.ID] = body
	}

	ix := index.New()
	ix.Build(bodies)

	found := ix.Search(query, limit)
	hits := make([]SearchHit, len(found))
	for i, h := range found {
		hits[i] = SearchHit{ID: h.Key, DisplayName: node.DisplayName(h.Key), Line: h.Line, Text: h.Text}
	}
	return hits
}
