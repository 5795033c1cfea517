package node

import (
	"errors"
	"os"
	"path/filepath"
	"time"
)

// writeFile is replaced in tests to simulate a failing disk.
var writeFile = os.WriteFile

// Store reads and writes node files below Root.
type Store struct {
	Root string
	Now  func() time.Time
}

// NewStore returns a Store rooted at root using the wall clock.
func NewStore(root string) *Store {
	return &Store{Root: root, Now: time.Now}
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// NextRootIndex counts the root-level directories holding a metadata file
// and returns that count plus one.
func (s *Store) NextRootIndex() (uint64, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return 0, IOError("scan", "", err)
	}
	var count uint64
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.Root, e.Name(), MetaFile)); err == nil {
			count++
		}
	}
	return count + 1, nil
}

// NextKey computes the key a new node called name would receive under
// parent (nil for the root) without touching the disk.
func (s *Store) NextKey(name string, parent *Node) (string, error) {
	if err := ValidName(name); err != nil {
		return "", InvalidArgs("create", "%v", err)
	}
	var (
		index     uint64
		parentKey string
	)
	if parent == nil {
		next, err := s.NextRootIndex()
		if err != nil {
			return "", err
		}
		index = next
	} else {
		index = uint64(len(parent.Children)) + 1
		parentKey = parent.ID
	}
	return Join(parentKey, Segment(index, 0, Slug(name))), nil
}

// Create persists a new node called name under parent (nil for the root).
// The caller is responsible for appending the result to parent.Children.
func (s *Store) Create(name string, parent *Node) (*Node, error) {
	id, err := s.NextKey(name, parent)
	if err != nil {
		return nil, err
	}
	return s.CreateAt(id, name)
}

// CreateAt persists a new node at the precomputed key id. Either both
// files exist afterwards or the directory is removed again.
func (s *Store) CreateAt(id, name string) (*Node, error) {
	now := s.now()
	n := &Node{
		ID:        id,
		Name:      name,
		Parent:    ParentKey(id),
		Links:     make(map[string]Link),
		Backlinks: make(map[BacklinkKey]Link),
		Tags:      make(map[string]bool),
		Created:   now,
		Updated:   now,
		Updates:   1,
		Root:      s.Root,
	}
	if err := os.Mkdir(n.Dir(), 0o755); err != nil {
		return nil, IOError("create", id, err)
	}
	err := writeFile(n.ContentPath(), []byte("# "+name+"\n"), 0o644)
	if err == nil {
		err = s.WriteMeta(n)
	}
	if err != nil {
		if rmErr := os.RemoveAll(n.Dir()); rmErr != nil {
			err = errors.Join(err, rmErr)
		}
		return nil, IOError("create", id, err)
	}
	return n, nil
}

// FromPersisted reads metaPath and combines it with the positional data
// found by a directory scan.
func (s *Store) FromPersisted(id, metaPath, parent string, children []string) (*Node, error) {
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, IOError("load", id, err)
	}
	n := &Node{
		ID:       id,
		Parent:   parent,
		Children: children,
		Root:     s.Root,
	}
	if err := decodeMeta(data, n); err != nil {
		return nil, ParseError("load", id, err)
	}
	return n, nil
}

// WriteMeta overwrites n's metadata file with its in-memory fields.
func (s *Store) WriteMeta(n *Node) error {
	data, err := EncodeMeta(n)
	if err != nil {
		return ParseError("write meta", n.ID, err)
	}
	if err := WriteFileAtomic(n.MetaPath(), data); err != nil {
		return IOError("write meta", n.ID, err)
	}
	return nil
}

// Tick bumps the update counter on the first change of a calendar day and
// refreshes Updated. Nothing is written.
func (s *Store) Tick(n *Node) {
	now := s.now()
	if !sameDay(now, n.Updated) {
		n.Updates++
	}
	n.Updated = now
}

// TickAndPersist ticks n and persists it.
func (s *Store) TickAndPersist(n *Node) error {
	s.Tick(n)
	return s.WriteMeta(n)
}

// WriteFileAtomic writes data next to path and renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
