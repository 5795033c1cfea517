package tree

import (
	"os"
	"strings"

	"github.com/skridlevsky/codex/node"
	"github.com/skridlevsky/codex/parser"
)

// TodayNode returns the journal entry for the current day, creating it when
// the newest entry belongs to another day. A new entry inherits the open
// todos of the entry before it.
func (t *Tree) TodayNode() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.journal == "" {
		return "", node.NotFound("today", JournalTag)
	}
	j, ok := t.nodes[t.journal]
	if !ok {
		return "", node.NotFound("today", t.journal)
	}
	today := t.now().Format(t.dateFormat)
	if n := len(j.Children); n > 0 && strings.HasSuffix(j.Children[n-1], node.Slug(today)) {
		return j.Children[n-1], nil
	}

	id, err := t.createLocked(t.journal, today)
	if err != nil {
		return id, err
	}

	// Re-read: the create may have widened the previous entries.
	children := t.nodes[t.journal].Children
	if len(children) < 2 {
		return id, nil
	}
	prev := children[len(children)-2]
	if err := t.rolloverLocked(prev, id); err != nil {
		return id, err
	}
	return id, nil
}

// rolloverLocked appends the open todos of from to the body of to.
func (t *Tree) rolloverLocked(from, to string) error {
	src, dst := t.nodes[from], t.nodes[to]
	if src == nil || dst == nil {
		return nil
	}
	body, err := os.ReadFile(src.ContentPath())
	if err != nil {
		return node.IOError("rollover", from, err)
	}
	todos := parser.OpenTodos(string(body))
	if len(todos) == 0 {
		return nil
	}
	current, err := os.ReadFile(dst.ContentPath())
	if err != nil {
		return node.IOError("rollover", to, err)
	}
	next := string(current) + "\n" + strings.Join(todos, "\n") + "\n"
	if err := node.WriteFileAtomic(dst.ContentPath(), []byte(next)); err != nil {
		return node.IOError("rollover", to, err)
	}
	t.logger.Debug("rolled over todos", "from", from, "to", to, "count", len(todos))
	return nil
}

// LatestJournal returns the key of the newest journal entry.
func (t *Tree) LatestJournal() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.journal == "" {
		return "", node.NotFound("latest journal", JournalTag)
	}
	j, ok := t.nodes[t.journal]
	if !ok || len(j.Children) == 0 {
		return "", node.NotFound("latest journal", t.journal)
	}
	return j.Children[len(j.Children)-1], nil
}
