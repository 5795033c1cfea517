package types

// --- Navigate tool inputs ---

type GetNodeInput struct {
	ID             string `json:"id" jsonschema:"Node key, e.g. 2-desk/1-cool-jazz"`
	IncludeContent bool   `json:"includeContent,omitempty" jsonschema:"Include the parsed markdown body. Default: false"`
}

type ListNodesInput struct {
	Parent string `json:"parent,omitempty" jsonschema:"Only list direct children of this key. Empty lists root nodes"`
	HasTag string `json:"hasTag,omitempty" jsonschema:"Filter to nodes with this tag (searches the whole tree)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max results. Default: 50"`
}

type NextSiblingInput struct {
	ID       string `json:"id" jsonschema:"Node key to start from"`
	Previous bool   `json:"previous,omitempty" jsonschema:"Step backwards instead of forwards. Default: false"`
}

type RecentInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results. Default: 20"`
}

type GetLinksInput struct {
	ID        string `json:"id" jsonschema:"Node key to get links for"`
	Direction string `json:"direction,omitempty" jsonschema:"Link direction: forward or backward or both. Default: both"`
}

// --- Search tool inputs ---

type SearchInput struct {
	Query string `json:"query" jsonschema:"Words to find in node bodies (case-insensitive, all must match on one line)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results. Default: 20"`
}

type FindByTagInput struct {
	Tag string `json:"tag" jsonschema:"Tag name to search for"`
}

// --- Analyze tool inputs ---

// GraphOverviewInput has no required params; returns global stats.
type GraphOverviewInput struct{}

type FindConnectionsInput struct {
	From     string `json:"from" jsonschema:"Starting node key"`
	To       string `json:"to" jsonschema:"Target node key"`
	MaxDepth int    `json:"maxDepth,omitempty" jsonschema:"Max search depth. Default: 5"`
}

// KnowledgeGapsInput has no required params; returns sparse areas.
type KnowledgeGapsInput struct{}

// TopicClustersInput has no required params; returns connected groups.
type TopicClustersInput struct{}

// --- Write tool inputs ---

type CreateNodeInput struct {
	Parent string `json:"parent,omitempty" jsonschema:"Parent node key. Empty creates a root node"`
	Name   string `json:"name" jsonschema:"Display name of the new node"`
	Body   string `json:"body,omitempty" jsonschema:"Markdown appended below the generated heading"`
}

type LinkNodesInput struct {
	Text     string `json:"text" jsonschema:"Link text, unique per source node"`
	From     string `json:"from" jsonschema:"Source node key"`
	FromLine uint64 `json:"fromLine,omitempty" jsonschema:"Line of the link in the source body"`
	FromChar uint64 `json:"fromChar,omitempty" jsonschema:"Column of the link in the source body"`
	To       string `json:"to" jsonschema:"Target node key"`
	ToLine   uint64 `json:"toLine,omitempty" jsonschema:"Line the link points at in the target body"`
	ToChar   uint64 `json:"toChar,omitempty" jsonschema:"Column the link points at in the target body"`
}

type TagNodeInput struct {
	ID  string `json:"id" jsonschema:"Node key"`
	Tag string `json:"tag" jsonschema:"Tag to add"`
}

type AppendInput struct {
	ID   string `json:"id" jsonschema:"Node key"`
	Text string `json:"text" jsonschema:"Markdown appended to the node body"`
}

// --- Journal tool inputs ---

// TodayInput has no params; returns today's journal entry.
type TodayInput struct{}

type JournalSearchInput struct {
	Query string `json:"query" jsonschema:"Text to search for in journal entries"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results. Default: 20"`
}
