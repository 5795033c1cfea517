// Package tree owns the set of nodes below a data directory. It loads them
// from disk, keeps them in memory, and funnels every mutation through one
// lock so structure, links, and files stay consistent.
package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/skridlevsky/codex/node"
	"github.com/skridlevsky/codex/vcs"
)

// Anchor tags mark the nodes that TodayNode and the desk shortcuts use.
const (
	JournalTag = "journal"
	DeskTag    = "desk"
)

// DefaultDateFormat names daily journal entries, e.g. "Sat Mar 02 2024".
const DefaultDateFormat = "Mon Jan 02 2006"

// Tree is the in-memory aggregate of every node below a directory.
type Tree struct {
	mu sync.Mutex

	dir     string
	store   *node.Store
	nodes   map[string]*node.Node
	roots   []string
	journal string
	desk    string

	stager     vcs.Stager
	logger     *slog.Logger
	now        func() time.Time
	dateFormat string
	lastStamp  int64

	// unsettled is set while a committed rebalance log is still on disk.
	unsettled bool

	// Filesystem hooks used by the rebalance transaction.
	rename    func(oldpath, newpath string) error
	writeFile func(name string, data []byte, perm fs.FileMode) error
}

// Option configures a Tree.
type Option func(*Tree)

// WithStager stages touched paths after each structural change.
func WithStager(s vcs.Stager) Option {
	return func(t *Tree) {
		if s != nil {
			t.stager = s
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tree) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(t *Tree) {
		if now != nil {
			t.now = now
		}
	}
}

// WithDateFormat sets the time layout used to name journal entries.
func WithDateFormat(layout string) Option {
	return func(t *Tree) {
		if layout != "" {
			t.dateFormat = layout
		}
	}
}

// New returns an empty tree rooted at dir. Call Load to read existing nodes.
func New(dir string, opts ...Option) *Tree {
	t := &Tree{
		dir:        dir,
		nodes:      make(map[string]*node.Node),
		stager:     vcs.Nop{},
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
		dateFormat: DefaultDateFormat,
		rename:     os.Rename,
		writeFile:  os.WriteFile,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.store = &node.Store{Root: dir, Now: func() time.Time { return t.now() }}
	return t
}

// Dir returns the data directory.
func (t *Tree) Dir() string {
	return t.dir
}

// Load recovers any interrupted rebalance and then replaces the in-memory
// state with what is on disk. On failure the previous state is kept.
func (t *Tree) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadLocked()
}

func (t *Tree) loadLocked() error {
	if err := t.recoverLocked(); err != nil {
		return err
	}

	s := &scanner{store: t.store, logger: t.logger, nodes: make(map[string]*node.Node)}
	roots, err := s.children("")
	if err != nil {
		return err
	}
	for _, key := range roots {
		if err := s.visit(key, ""); err != nil {
			return err
		}
	}

	t.nodes = s.nodes
	t.roots = roots
	t.journal = s.journal
	t.desk = s.desk
	t.unsettled = false
	t.logger.Debug("tree loaded", "dir", t.dir, "nodes", len(t.nodes), "journal", t.journal, "desk", t.desk)
	return nil
}

type scanner struct {
	store   *node.Store
	logger  *slog.Logger
	nodes   map[string]*node.Node
	journal string
	desk    string
}

// children lists the node directories directly below key, ordered by index.
func (s *scanner) children(key string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.store.Root, filepath.FromSlash(key)))
	if err != nil {
		return nil, node.IOError("load", key, err)
	}
	type child struct {
		key   string
		index uint64
	}
	var found []child
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		childKey := node.Join(key, e.Name())
		meta := filepath.Join(s.store.Root, filepath.FromSlash(childKey), node.MetaFile)
		if _, err := os.Stat(meta); err != nil {
			continue
		}
		index, _, _, err := node.ParseSegment(e.Name())
		if err != nil {
			return nil, node.ParseError("load", childKey, err)
		}
		found = append(found, child{key: childKey, index: index})
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].index != found[j].index {
			return found[i].index < found[j].index
		}
		return found[i].key < found[j].key
	})
	keys := make([]string, len(found))
	for i, c := range found {
		keys[i] = c.key
	}
	return keys, nil
}

// visit loads key after all of its descendants.
func (s *scanner) visit(key, parent string) error {
	children, err := s.children(key)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := s.visit(c, key); err != nil {
			return err
		}
	}
	meta := filepath.Join(s.store.Root, filepath.FromSlash(key), node.MetaFile)
	n, err := s.store.FromPersisted(key, meta, parent, children)
	if err != nil {
		return err
	}
	s.anchor(n)
	s.nodes[key] = n
	return nil
}

func (s *scanner) anchor(n *node.Node) {
	if n.HasTag(JournalTag) {
		if s.journal == "" {
			s.journal = n.ID
		} else {
			s.logger.Warn("duplicate journal anchor ignored", "kept", s.journal, "ignored", n.ID)
		}
	}
	if n.HasTag(DeskTag) {
		if s.desk == "" {
			s.desk = n.ID
		} else {
			s.logger.Warn("duplicate desk anchor ignored", "kept", s.desk, "ignored", n.ID)
		}
	}
}

// LayFoundation creates the journal and desk anchors in an empty tree.
func (t *Tree) LayFoundation() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.nodes) > 0 {
		return nil
	}
	for _, a := range []struct{ name, tag string }{{"journal", JournalTag}, {"desk", DeskTag}} {
		id, err := t.createLocked("", a.name)
		if err != nil {
			return err
		}
		if err := t.tagLocked(id, a.tag); err != nil {
			return err
		}
	}
	t.logger.Info("foundation laid", "journal", t.journal, "desk", t.desk)
	return nil
}

// Get returns a copy of the node at key.
func (t *Tree) Get(key string) (*node.Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[key]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Keys returns every node key in sorted order.
func (t *Tree) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Sorted(maps.Keys(t.nodes))
}

// Roots returns the keys of the root-level nodes in index order.
func (t *Tree) Roots() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.roots)
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodes)
}

// Journal returns the key of the journal anchor, if any.
func (t *Tree) Journal() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.journal, t.journal != ""
}

// Desk returns the key of the desk anchor, if any.
func (t *Tree) Desk() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.desk, t.desk != ""
}

// Snapshot returns copies of every node, sorted by key.
func (t *Tree) Snapshot() []*node.Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*node.Node, 0, len(t.nodes))
	for _, key := range slices.Sorted(maps.Keys(t.nodes)) {
		out = append(out, t.nodes[key].Clone())
	}
	return out
}

// NodesByRecency returns copies of every node, most recently updated first.
func (t *Tree) NodesByRecency() []*node.Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*node.Node, 0, len(t.nodes))
	for _, n := range t.nodes {
		out = append(out, n.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Updated.Equal(out[j].Updated) {
			return out[i].Updated.After(out[j].Updated)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Link records a link called text from one position to another, along with
// the matching backlink on the target. Both endpoints share one timestamp.
// Reusing text on the same source replaces the earlier link and drops its
// backlink from the old target.
func (t *Tree) Link(text, from string, fromLine, fromChar uint64, to string, toLine, toChar uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.settleLocked(); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return node.InvalidArgs("link", "link text is empty")
	}
	if strings.Contains(text, node.RecordSep) {
		return node.InvalidArgs("link", "link text must not contain %q", node.RecordSep)
	}
	if _, ok := t.nodes[from]; !ok {
		return node.NotFound("link", from)
	}
	if _, ok := t.nodes[to]; !ok {
		return node.NotFound("link", to)
	}

	work := make(map[string]*node.Node)
	edit := func(key string) *node.Node {
		if n, ok := work[key]; ok {
			return n
		}
		n := t.nodes[key].Clone()
		work[key] = n
		return n
	}

	src := edit(from)
	if prev, ok := src.Links[text]; ok {
		if _, ok := t.nodes[prev.Target]; ok {
			delete(edit(prev.Target).Backlinks, prev.Key())
		} else {
			t.logger.Warn("previous link target missing", "from", from, "text", text, "target", prev.Target)
		}
	}

	link, backlink := node.Pair(text, from, fromLine, fromChar, to, toLine, toChar, t.stamp())
	src.InsertLink(link)
	edit(to).InsertBacklink(backlink)

	t.store.Tick(src)
	if err := t.commitMetas(slices.Collect(maps.Values(work))); err != nil {
		return err
	}
	t.logger.Debug("linked", "text", text, "from", from, "to", to, "name_ref", link.NameLinked)
	return nil
}

// GetLink returns the link called text held by key.
func (t *Tree) GetLink(key, text string) (node.Link, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[key]
	if !ok {
		return node.Link{}, node.NotFound("get link", key)
	}
	l, ok := n.Links[text]
	if !ok {
		return node.Link{}, node.NotFound("get link", fmt.Sprintf("%s#%s", key, text))
	}
	return l, nil
}

// Tag adds tag to the node at key. Tagging the first journal or desk node
// makes it the anchor.
func (t *Tree) Tag(key, tag string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tagLocked(key, tag)
}

func (t *Tree) tagLocked(key, tag string) error {
	if err := t.settleLocked(); err != nil {
		return err
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return node.InvalidArgs("tag", "tag is empty")
	}
	if _, ok := t.nodes[key]; !ok {
		return node.NotFound("tag", key)
	}
	n := t.nodes[key].Clone()
	n.Tags[tag] = true
	t.store.Tick(n)
	if err := t.commitMetas([]*node.Node{n}); err != nil {
		return err
	}
	switch {
	case tag == JournalTag && t.journal == "":
		t.journal = key
	case tag == DeskTag && t.desk == "":
		t.desk = key
	}
	return nil
}

// Touch records an edit of the node's content.
func (t *Tree) Touch(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.settleLocked(); err != nil {
		return err
	}
	if _, ok := t.nodes[key]; !ok {
		return node.NotFound("touch", key)
	}
	n := t.nodes[key].Clone()
	t.store.Tick(n)
	return t.commitMetas([]*node.Node{n})
}

// stamp returns a link timestamp that is unique within this tree even when
// the clock does not advance between calls.
func (t *Tree) stamp() int64 {
	ts := t.now().UnixNano()
	if ts <= t.lastStamp {
		ts = t.lastStamp + 1
	}
	t.lastStamp = ts
	return ts
}

// commitMetas persists edited clones and installs them. If a write fails,
// files already written are restored from the installed originals.
func (t *Tree) commitMetas(edited []*node.Node) error {
	for i, n := range edited {
		if err := t.store.WriteMeta(n); err != nil {
			for _, done := range edited[:i] {
				if rerr := t.store.WriteMeta(t.nodes[done.ID]); rerr != nil {
					err = errors.Join(err, rerr)
				}
			}
			return err
		}
	}
	for _, n := range edited {
		t.nodes[n.ID] = n
	}
	return nil
}

// stage hands paths below the data directory to the stager. Failures are
// logged; the change itself has already been persisted.
func (t *Tree) stage(keys ...string) {
	paths := make([]string, 0, len(keys))
	for _, k := range keys {
		paths = append(paths, filepath.Join(t.dir, filepath.FromSlash(k)))
	}
	if err := t.stager.Stage(paths...); err != nil {
		t.logger.Warn("staging failed", "paths", keys, "err", err)
	}
}
