// Package node holds a single note: its hierarchical key, the files that
// persist it, and the link records that tie it to other notes.
package node

import (
	"maps"
	"path/filepath"
	"slices"
	"time"
)

// File names inside a node directory.
const (
	ContentFile = "_.md"
	MetaFile    = "meta.toml"
)

// Node is one entry of the tree. ID doubles as its path below Root.
type Node struct {
	ID        string
	Name      string
	Parent    string // "" at the root
	Children  []string
	Links     map[string]Link      // by link text
	Backlinks map[BacklinkKey]Link // by (text, timestamp)
	Tags      map[string]bool
	Created   time.Time
	Updated   time.Time
	Updates   int64
	Root      string
}

// DisplayName returns the human form of the node's key.
func (n *Node) DisplayName() string {
	return DisplayName(n.ID)
}

// Index returns the node's own position among its siblings (1-based).
func (n *Node) Index() (uint64, error) {
	return Index(n.ID)
}

// Dir is the node's directory on disk.
func (n *Node) Dir() string {
	return filepath.Join(n.Root, filepath.FromSlash(n.ID))
}

// ContentPath is the path of the node's markdown body.
func (n *Node) ContentPath() string {
	return filepath.Join(n.Dir(), ContentFile)
}

// MetaPath is the path of the node's metadata file.
func (n *Node) MetaPath() string {
	return filepath.Join(n.Dir(), MetaFile)
}

// HasTag reports tag membership.
func (n *Node) HasTag(tag string) bool {
	return n.Tags[tag]
}

// SortedTags returns the tags in lexical order.
func (n *Node) SortedTags() []string {
	return slices.Sorted(maps.Keys(n.Tags))
}

// InsertLink stores l under its text, replacing any previous link with that text.
func (n *Node) InsertLink(l Link) {
	if n.Links == nil {
		n.Links = make(map[string]Link)
	}
	n.Links[l.Text] = l
}

// InsertBacklink stores bl under its (text, timestamp) key.
func (n *Node) InsertBacklink(bl Link) {
	if n.Backlinks == nil {
		n.Backlinks = make(map[BacklinkKey]Link)
	}
	n.Backlinks[bl.Key()] = bl
}

// Clone returns a deep copy so a caller can edit it without touching n.
func (n *Node) Clone() *Node {
	c := *n
	c.Children = slices.Clone(n.Children)
	c.Links = maps.Clone(n.Links)
	c.Backlinks = maps.Clone(n.Backlinks)
	c.Tags = maps.Clone(n.Tags)
	if c.Links == nil {
		c.Links = make(map[string]Link)
	}
	if c.Backlinks == nil {
		c.Backlinks = make(map[BacklinkKey]Link)
	}
	if c.Tags == nil {
		c.Tags = make(map[string]bool)
	}
	return &c
}
