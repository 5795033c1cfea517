package tree

import (
	"os"
	"strings"

	"github.com/skridlevsky/codex/node"
)

// Body returns the markdown content of the node at key.
func (t *Tree) Body(key string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[key]
	if !ok {
		return "", node.NotFound("read body", key)
	}
	data, err := os.ReadFile(n.ContentPath())
	if err != nil {
		return "", node.IOError("read body", key, err)
	}
	return string(data), nil
}

// AppendBody adds text to the end of the node's content on a new line and
// ticks the node.
func (t *Tree) AppendBody(key, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.settleLocked(); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return node.InvalidArgs("append", "text is empty")
	}
	live, ok := t.nodes[key]
	if !ok {
		return node.NotFound("append", key)
	}
	data, err := os.ReadFile(live.ContentPath())
	if err != nil {
		return node.IOError("append", key, err)
	}
	body := string(data)
	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	body += strings.TrimRight(text, "\n") + "\n"
	if err := node.WriteFileAtomic(live.ContentPath(), []byte(body)); err != nil {
		return node.IOError("append", key, err)
	}

	n := live.Clone()
	t.store.Tick(n)
	return t.commitMetas([]*node.Node{n})
}
