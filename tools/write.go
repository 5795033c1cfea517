package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/skridlevsky/codex/backend"
	"github.com/skridlevsky/codex/types"
)

// Write implements write MCP tools.
type Write struct {
	store backend.Backend
}

// NewWrite creates a new Write tool handler.
func NewWrite(s backend.Backend) *Write {
	return &Write{store: s}
}

// CreateNode creates a node under a parent, or at the root, with an optional body.
func (w *Write) CreateNode(ctx context.Context, req *mcp.CallToolRequest, input types.CreateNodeInput) (*mcp.CallToolResult, any, error) {
	id, err := w.store.CreateNode(input.Parent, input.Name)
	if err != nil {
		if id == "" {
			return errorResult(fmt.Sprintf("failed to create node '%s': %v", input.Name, err)), nil, nil
		}
		// The node exists; a follow-up metadata write did not land.
		return errorResult(fmt.Sprintf("created %s but not every metadata write finished: %v", id, err)), nil, nil
	}

	if input.Body != "" {
		if err := w.store.AppendBody(id, input.Body); err != nil {
			return errorResult(fmt.Sprintf("created %s but failed to write body: %v", id, err)), nil, nil
		}
	}

	result := map[string]any{
		"created": true,
		"id":      id,
		"name":    input.Name,
	}
	if input.Parent != "" {
		result["parent"] = input.Parent
	}

	res, err := jsonTextResult(result)
	return res, nil, err
}

// LinkNodes records a link from one node to another along with its backlink.
func (w *Write) LinkNodes(ctx context.Context, req *mcp.CallToolRequest, input types.LinkNodesInput) (*mcp.CallToolResult, any, error) {
	err := w.store.Link(input.Text, input.From, input.FromLine, input.FromChar, input.To, input.ToLine, input.ToChar)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to link %s -> %s: %v", input.From, input.To, err)), nil, nil
	}

	link, err := w.store.GetLink(input.From, input.Text)
	if err != nil {
		return errorResult(fmt.Sprintf("linked but could not read the link back: %v", err)), nil, nil
	}

	res, err := jsonTextResult(map[string]any{
		"linked":    true,
		"from":      input.From,
		"to":        link.Target,
		"text":      link.Text,
		"timestamp": link.Timestamp,
		"nameRef":   link.NameLinked,
	})
	return res, nil, err
}

// TagNode adds a tag to a node.
func (w *Write) TagNode(ctx context.Context, req *mcp.CallToolRequest, input types.TagNodeInput) (*mcp.CallToolResult, any, error) {
	if err := w.store.Tag(input.ID, input.Tag); err != nil {
		return errorResult(fmt.Sprintf("failed to tag %s: %v", input.ID, err)), nil, nil
	}

	nd, ok := w.store.Get(input.ID)
	if !ok {
		return errorResult(fmt.Sprintf("node not found: %s", input.ID)), nil, nil
	}

	res, err := jsonTextResult(types.Summarize(nd))
	return res, nil, err
}

// Append adds markdown to the end of a node's body.
func (w *Write) Append(ctx context.Context, req *mcp.CallToolRequest, input types.AppendInput) (*mcp.CallToolResult, any, error) {
	if err := w.store.AppendBody(input.ID, input.Text); err != nil {
		return errorResult(fmt.Sprintf("failed to append to %s: %v", input.ID, err)), nil, nil
	}
	return textResult(fmt.Sprintf("Appended to %s.", input.ID)), nil, nil
}
