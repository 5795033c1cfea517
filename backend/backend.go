package backend

import (
	"github.com/skridlevsky/codex/node"
)

// Reader is the read side of the note store. Returned nodes are copies.
// The tree (tree.Tree) satisfies this interface.
type Reader interface {
	Get(key string) (*node.Node, bool)
	Body(key string) (string, error)
	Snapshot() []*node.Node
	Roots() []string
	Journal() (string, bool)
	Desk() (string, bool)
	LatestJournal() (string, error)
	NodesByRecency() []*node.Node
	NextSibling(key string, previous bool) (string, error)
	GetLink(key, text string) (node.Link, error)
}

// Writer mutates the store. Every call persists before returning.
type Writer interface {
	CreateNode(parent, name string) (string, error)
	Link(text, from string, fromLine, fromChar uint64, to string, toLine, toChar uint64) error
	Tag(key, tag string) error
	Touch(key string) error
	AppendBody(key, text string) error
	TodayNode() (string, error)
}

// Backend is the full contract the MCP tools are written against.
type Backend interface {
	Reader
	Writer

	// Load re-reads everything from disk.
	Load() error
	// Dir is the data directory.
	Dir() string
}
