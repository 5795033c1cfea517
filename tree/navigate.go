package tree

import (
	"slices"

	"github.com/skridlevsky/codex/node"
)

// NextSibling returns the sibling after key, or before it when previous is
// set, wrapping around at either end. Siblings are stepped by position, so
// gaps left by deleted directories are skipped. Root-level nodes return
// themselves.
func (t *Tree) NextSibling(key string, previous bool) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[key]
	if !ok {
		return "", node.NotFound("next sibling", key)
	}
	if n.Parent == "" {
		return key, nil
	}
	parent, ok := t.nodes[n.Parent]
	if !ok {
		return "", node.NotFound("next sibling", n.Parent)
	}
	family := uint64(len(parent.Children))
	if family == 0 {
		return key, nil
	}
	pos := uint64(slices.Index(parent.Children, key) + 1)
	if pos == 0 {
		index, err := n.Index()
		if err != nil {
			return "", node.ParseError("next sibling", key, err)
		}
		pos = min(max(index, 1), family)
	}

	var next uint64
	switch {
	case previous && pos <= 1:
		next = family
	case previous:
		next = pos - 1
	case pos >= family:
		next = 1
	default:
		next = pos + 1
	}
	return parent.Children[next-1], nil
}
