package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/skridlevsky/codex/backend"
	"github.com/skridlevsky/codex/graph"
	"github.com/skridlevsky/codex/types"
)

// Analyze implements graph analysis MCP tools.
type Analyze struct {
	store backend.Reader
}

// NewAnalyze creates a new Analyze tool handler.
func NewAnalyze(s backend.Reader) *Analyze {
	return &Analyze{store: s}
}

// GraphOverview returns global graph statistics.
func (a *Analyze) GraphOverview(ctx context.Context, req *mcp.CallToolRequest, input types.GraphOverviewInput) (*mcp.CallToolResult, any, error) {
	stats := graph.Build(a.store).Overview()

	res, err := jsonTextResult(stats)
	return res, nil, err
}

// FindConnections finds how two nodes are connected in the graph.
func (a *Analyze) FindConnections(ctx context.Context, req *mcp.CallToolRequest, input types.FindConnectionsInput) (*mcp.CallToolResult, any, error) {
	g := graph.Build(a.store)
	for _, key := range []string{input.From, input.To} {
		if _, ok := g.Nodes[key]; !ok {
			return errorResult(fmt.Sprintf("node not found: %s", key)), nil, nil
		}
	}

	result := g.FindConnections(input.From, input.To, input.MaxDepth)

	if !result.DirectlyLinked && len(result.Paths) == 0 && len(result.SharedConnections) == 0 {
		return textResult(fmt.Sprintf("No connections found between '%s' and '%s'.", input.From, input.To)), nil, nil
	}

	res, err := jsonTextResult(result)
	return res, nil, err
}

// KnowledgeGaps finds sparse areas in the link graph.
func (a *Analyze) KnowledgeGaps(ctx context.Context, req *mcp.CallToolRequest, input types.KnowledgeGapsInput) (*mcp.CallToolResult, any, error) {
	gaps := graph.Build(a.store).KnowledgeGaps()

	res, err := jsonTextResult(gaps)
	return res, nil, err
}

// TopicClusters finds connected groups of nodes.
func (a *Analyze) TopicClusters(ctx context.Context, req *mcp.CallToolRequest, input types.TopicClustersInput) (*mcp.CallToolResult, any, error) {
	clusters := graph.Build(a.store).TopicClusters()

	if len(clusters) == 0 {
		return textResult("No topic clusters found. The graph may be too sparse or disconnected."), nil, nil
	}

	res, err := jsonTextResult(map[string]any{
		"clusterCount": len(clusters),
		"clusters":     clusters,
	})
	return res, nil, err
}
