package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/skridlevsky/codex/backend"
	"github.com/skridlevsky/codex/node"
	"github.com/skridlevsky/codex/parser"
	"github.com/skridlevsky/codex/types"
)

// Journal implements journal MCP tools.
type Journal struct {
	store backend.Backend
}

// NewJournal creates a new Journal tool handler.
func NewJournal(s backend.Backend) *Journal {
	return &Journal{store: s}
}

// Today returns today's journal entry, creating it and carrying open todos
// over from the previous entry when needed.
func (j *Journal) Today(ctx context.Context, req *mcp.CallToolRequest, input types.TodayInput) (*mcp.CallToolResult, any, error) {
	id, err := j.store.TodayNode()
	if err != nil {
		return errorResult(fmt.Sprintf("failed to open today's entry: %v", err)), nil, nil
	}

	nd, ok := j.store.Get(id)
	if !ok {
		return errorResult(fmt.Sprintf("node not found: %s", id)), nil, nil
	}
	view := types.View(nd)
	if body, err := j.store.Body(id); err == nil {
		content := parser.Parse(body)
		view.Content = &content
	}

	res, err := jsonTextResult(view)
	return res, nil, err
}

// JournalSearch searches only within journal entries.
func (j *Journal) JournalSearch(ctx context.Context, req *mcp.CallToolRequest, input types.JournalSearchInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(input.Query) == "" {
		return errorResult("query must not be empty"), nil, nil
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	anchor, ok := j.store.Journal()
	if !ok {
		return errorResult("no journal node: run init or tag a node 'journal'"), nil, nil
	}
	journal, ok := j.store.Get(anchor)
	if !ok {
		return errorResult(fmt.Sprintf("node not found: %s", anchor)), nil, nil
	}

	entries := make([]*node.Node, 0, len(journal.Children))
	for _, key := range journal.Children {
		if nd, ok := j.store.Get(key); ok {
			entries = append(entries, nd)
		}
	}

	hits := searchNodes(j.store, entries, input.Query, limit)
	if len(hits) == 0 {
		return textResult(fmt.Sprintf("No journal results for '%s'.", input.Query)), nil, nil
	}

	res, err := jsonTextResult(map[string]any{
		"query":   input.Query,
		"count":   len(hits),
		"results": hits,
	})
	return res, nil, err
}
