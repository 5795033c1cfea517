package tree

import (
	"github.com/skridlevsky/codex/node"
)

// CreateNode adds a node called name under parentKey ("" for the root) and
// returns its key. When the new index is a power of ten the existing
// siblings are widened first, which re-keys them and all their descendants.
//
// A non-empty key with an error means the node exists but some follow-up
// write did not land.
func (t *Tree) CreateNode(parentKey, name string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.createLocked(parentKey, name)
}

func (t *Tree) createLocked(parentKey, name string) (string, error) {
	if err := t.settleLocked(); err != nil {
		return "", err
	}
	var (
		parent   *node.Node
		siblings = t.roots
	)
	if parentKey != "" {
		p, ok := t.nodes[parentKey]
		if !ok {
			return "", node.NotFound("create", parentKey)
		}
		parent, siblings = p, p.Children
	}

	id, err := t.store.NextKey(name, parent)
	if err != nil {
		return "", err
	}
	index, err := node.Index(id)
	if err != nil {
		return "", node.ParseError("create", id, err)
	}

	k, widen := node.PowerOfTen(index)
	if !widen || len(siblings) == 0 {
		n, err := t.store.Create(name, parent)
		if err != nil {
			return "", err
		}
		err = t.attachLocked(parentKey, n, nil)
		if parentKey != "" {
			t.stage(n.ID, parentKey)
		} else {
			t.stage(n.ID)
		}
		t.logger.Debug("created node", "key", n.ID)
		return n.ID, err
	}

	r := newRebalance(t, parentKey, id, k+1)
	if err := r.plan(siblings); err != nil {
		return "", err
	}
	n, committed, err := r.apply(name)
	if !committed {
		return "", err
	}
	r.install()
	if err != nil {
		// Memory holds the final state; the log still on disk is replayed
		// before the next write.
		t.unsettled = true
	}
	if perr := t.attachLocked(parentKey, n, r.newKey); err == nil {
		err = perr
	}
	t.stage(append(r.touched(), parentKey)...)
	if err != nil {
		return id, err
	}
	t.logger.Info("rebalanced siblings", "parent", parentKey, "width", k+1, "renamed", len(r.renames))
	return id, nil
}

// attachLocked registers a freshly created node with its parent,
// translating sibling keys through renamed, and ticks the parent. The
// parent's child list is updated even when its metadata cannot be written.
func (t *Tree) attachLocked(parentKey string, n *node.Node, renamed map[string]string) error {
	id := n.ID
	t.nodes[id] = n

	if parentKey == "" {
		t.roots = append(t.roots, id)
		return nil
	}
	p := t.nodes[parentKey].Clone()
	for i, c := range p.Children {
		if nc, ok := renamed[c]; ok {
			p.Children[i] = nc
		}
	}
	p.Children = append(p.Children, id)
	ticked := p.Clone()
	if err := t.store.TickAndPersist(ticked); err != nil {
		t.logger.Error("parent metadata not refreshed", "key", parentKey, "err", err)
		t.nodes[parentKey] = p
		return err
	}
	t.nodes[parentKey] = ticked
	return nil
}
