package tree

import (
	"errors"
	"maps"
	"os"
	"slices"

	"github.com/google/uuid"

	"github.com/skridlevsky/codex/node"
)

// rebalance re-keys the existing children of a group whose next index is a
// power of ten so that every sibling carries the same number of digits.
// Touched nodes are edited as clones, the disk is changed under a
// write-ahead log, and the clones are installed only once the log commits.
type rebalance struct {
	t       *Tree
	parent  string // "" for the root group
	created string
	width   int

	renames []txRename
	newKey  map[string]string     // old key -> new key
	oldKey  map[string]string     // new key -> old key
	work    map[string]*node.Node // clones by old key
	order   []string              // old keys in the order they were cloned
}

func newRebalance(t *Tree, parent, created string, width int) *rebalance {
	return &rebalance{
		t:       t,
		parent:  parent,
		created: created,
		width:   width,
		newKey:  make(map[string]string),
		oldKey:  make(map[string]string),
		work:    make(map[string]*node.Node),
	}
}

// edit returns the working clone for key, which may be an old or a new key.
func (r *rebalance) edit(key string) *node.Node {
	if old, ok := r.oldKey[key]; ok && r.newKey[key] == "" {
		key = old
	}
	if n, ok := r.work[key]; ok {
		return n
	}
	live, ok := r.t.nodes[key]
	if !ok {
		return nil
	}
	n := live.Clone()
	r.work[key] = n
	r.order = append(r.order, key)
	return n
}

// plan computes every new key and rewrites the clones. Nothing is written.
func (r *rebalance) plan(siblings []string) error {
	for _, sib := range siblings {
		index, _, slug, err := node.ParseSegment(node.LastSegment(sib))
		if err != nil {
			return node.ParseError("rebalance", sib, err)
		}
		to := node.Join(r.parent, node.Segment(index, r.width, slug))
		if to == sib {
			continue
		}
		if err := r.rekey(sib, to); err != nil {
			return err
		}
		r.renames = append(r.renames, txRename{From: sib, To: to})
	}

	for _, old := range slices.Sorted(maps.Keys(r.newKey)) {
		n := r.edit(old)
		newID := r.newKey[old]
		if dangling := node.PropagateRename(n, newID, r.edit); len(dangling) > 0 {
			r.t.logger.Warn("dangling link partners", "node", old, "partners", dangling)
		}
		n.ID = newID
		if p, ok := r.newKey[n.Parent]; ok {
			n.Parent = p
		}
		for i, c := range n.Children {
			if nc, ok := r.newKey[c]; ok {
				n.Children[i] = nc
			}
		}
	}
	return nil
}

// rekey maps old to new for a node and all of its descendants.
func (r *rebalance) rekey(old, new string) error {
	n, ok := r.t.nodes[old]
	if !ok {
		return node.NotFound("rebalance", old)
	}
	r.newKey[old] = new
	r.oldKey[new] = old
	for _, c := range n.Children {
		if err := r.rekey(c, node.Join(new, node.LastSegment(c))); err != nil {
			return err
		}
	}
	return nil
}

// apply runs the disk side of the transaction and returns the created node.
// Before the commit point every failure is undone. After it, the error is
// returned together with the node; Load finishes the job from the log.
func (r *rebalance) apply(name string) (created *node.Node, committed bool, err error) {
	t := r.t
	log := &txLog{
		ID:      uuid.NewString(),
		State:   stateStaged,
		Created: r.created,
		Renames: r.renames,
	}
	for _, old := range r.order {
		log.Metas = append(log.Metas, txPending{Before: old, After: r.work[old].ID})
	}
	for _, rn := range r.renames {
		if exists(t.keyPath(rn.To)) {
			return nil, false, node.IOError("rebalance", rn.To, errors.New("destination exists"))
		}
	}

	if err := t.writeLog(log); err != nil {
		return nil, false, node.IOError("rebalance", log.ID, err)
	}

	var (
		renamed, pending int
		made             bool
	)
	abort := func(cause error) (*node.Node, bool, error) {
		if rerr := t.rollBack(log, renamed, pending, made); rerr != nil {
			cause = errors.Join(cause, rerr)
			t.logger.Error("rebalance rollback incomplete", "txn", log.ID, "err", rerr)
			return nil, false, node.IOError("rebalance", r.created, cause)
		}
		if rerr := os.Remove(t.logPath()); rerr != nil {
			cause = errors.Join(cause, rerr)
		}
		return nil, false, node.IOError("rebalance", r.created, cause)
	}

	created, err = t.store.CreateAt(r.created, name)
	if err != nil {
		return abort(err)
	}
	made = true

	for _, m := range log.Metas {
		data, err := node.EncodeMeta(r.work[m.Before])
		if err != nil {
			return abort(err)
		}
		if err := t.writeFile(t.keyPath(m.Before, node.MetaFile+pendingSuffix), data, 0o644); err != nil {
			return abort(err)
		}
		pending++
	}

	for _, rn := range r.renames {
		if err := t.rename(t.keyPath(rn.From), t.keyPath(rn.To)); err != nil {
			return abort(err)
		}
		renamed++
	}

	log.State = stateCommitted
	if err := t.writeLog(log); err != nil {
		return abort(err)
	}

	var errs []error
	for _, m := range log.Metas {
		if err := t.rename(t.keyPath(m.After, node.MetaFile+pendingSuffix), t.keyPath(m.After, node.MetaFile)); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		if err := os.Remove(t.logPath()); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		t.logger.Error("rebalance committed but not finalised; reload to recover", "txn", log.ID, "err", errors.Join(errs...))
		return created, true, node.IOError("rebalance", r.created, errors.Join(errs...))
	}
	return created, true, nil
}

// install swaps the working clones into the tree.
func (r *rebalance) install() {
	t := r.t
	for _, old := range r.order {
		delete(t.nodes, old)
	}
	for _, old := range r.order {
		n := r.work[old]
		t.nodes[n.ID] = n
	}
	if r.parent == "" {
		for i, k := range t.roots {
			if nk, ok := r.newKey[k]; ok {
				t.roots[i] = nk
			}
		}
	}
	if nk, ok := r.newKey[t.journal]; ok {
		t.journal = nk
	}
	if nk, ok := r.newKey[t.desk]; ok {
		t.desk = nk
	}
}

// touched returns the final keys of every node whose metadata the
// rebalance rewrote, the created node included.
func (r *rebalance) touched() []string {
	keys := make([]string, 0, len(r.order)+1)
	for _, old := range r.order {
		keys = append(keys, r.work[old].ID)
	}
	return append(keys, r.created)
}
