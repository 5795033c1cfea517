package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/skridlevsky/codex/node"
)

// The rebalance log lives in a hidden directory so scans skip it.
const (
	stateDir      = ".codex"
	logName       = "rebalance.toml"
	pendingSuffix = ".pending"
)

// Log states. A staged log is rolled back on recovery, a committed one is
// rolled forward.
const (
	stateStaged    = "staged"
	stateCommitted = "committed"
)

type txLog struct {
	ID      string      `toml:"id"`
	State   string      `toml:"state"`
	Created string      `toml:"created"`
	Renames []txRename  `toml:"renames"`
	Metas   []txPending `toml:"metas"`
}

// txRename moves a sibling directory. Descendants move with it.
type txRename struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// txPending names a node whose metadata is staged next to its current file.
// Before is the key the node had when the pending file was written, After
// the key it has once every rename is done.
type txPending struct {
	Before string `toml:"before"`
	After  string `toml:"after"`
}

func (t *Tree) logPath() string {
	return filepath.Join(t.dir, stateDir, logName)
}

func (t *Tree) keyPath(key string, file ...string) string {
	return filepath.Join(append([]string{t.dir, filepath.FromSlash(key)}, file...)...)
}

func (t *Tree) writeLog(l *txLog) error {
	data, err := toml.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode rebalance log: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(t.dir, stateDir), 0o755); err != nil {
		return err
	}
	path := t.logPath()
	tmp := path + ".tmp"
	if err := t.writeFile(tmp, data, 0o644); err != nil {
		return err
	}
	return t.rename(tmp, path)
}

func (t *Tree) readLog() (*txLog, error) {
	data, err := os.ReadFile(t.logPath())
	if err != nil {
		return nil, err
	}
	var l txLog
	if err := toml.Unmarshal(data, &l); err != nil {
		return nil, node.ParseError("recover", logName, err)
	}
	return &l, nil
}

// recoverLocked finishes or undoes a rebalance interrupted by a crash.
func (t *Tree) recoverLocked() error {
	l, err := t.readLog()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	switch l.State {
	case stateCommitted:
		err = t.rollForward(l)
	case stateStaged:
		err = t.rollBack(l, len(l.Renames), len(l.Metas), l.Created != "")
	default:
		return node.ParseError("recover", logName, fmt.Errorf("unknown state %q", l.State))
	}
	if err != nil {
		return node.IOError("recover", l.ID, err)
	}
	if err := os.Remove(t.logPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return node.IOError("recover", l.ID, err)
	}
	t.logger.Warn("recovered interrupted rebalance", "txn", l.ID, "state", l.State, "renames", len(l.Renames))
	return nil
}

// settleLocked finishes a rebalance that this tree committed but could not
// complete, so no later write races a stale pending file. Memory already
// holds the final state and is written over whatever the swap put in place.
func (t *Tree) settleLocked() error {
	if !t.unsettled {
		return nil
	}
	l, err := t.readLog()
	if errors.Is(err, fs.ErrNotExist) {
		t.unsettled = false
		return nil
	}
	if err != nil {
		return err
	}
	if err := t.rollForward(l); err != nil {
		return node.IOError("settle", l.ID, err)
	}
	for _, m := range l.Metas {
		if n, ok := t.nodes[m.After]; ok {
			if err := t.store.WriteMeta(n); err != nil {
				return err
			}
		}
	}
	if err := os.Remove(t.logPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return node.IOError("settle", l.ID, err)
	}
	t.unsettled = false
	t.logger.Info("settled unfinished rebalance", "txn", l.ID)
	return nil
}

// rollForward completes the renames and metadata swaps of a committed log.
// Steps that already happened are recognised and skipped.
func (t *Tree) rollForward(l *txLog) error {
	for _, r := range l.Renames {
		if exists(t.keyPath(r.From)) && !exists(t.keyPath(r.To)) {
			if err := t.rename(t.keyPath(r.From), t.keyPath(r.To)); err != nil {
				return err
			}
		}
	}
	for _, m := range l.Metas {
		pending := t.keyPath(m.After, node.MetaFile+pendingSuffix)
		if !exists(pending) {
			continue
		}
		if err := t.rename(pending, t.keyPath(m.After, node.MetaFile)); err != nil {
			return err
		}
	}
	return nil
}

// rollBack undoes the first renames directory moves, removes the first
// metas pending files, and deletes the created node when created is set.
func (t *Tree) rollBack(l *txLog, renames, metas int, created bool) error {
	var errs []error
	for i := renames - 1; i >= 0; i-- {
		r := l.Renames[i]
		if exists(t.keyPath(r.To)) && !exists(t.keyPath(r.From)) {
			if err := t.rename(t.keyPath(r.To), t.keyPath(r.From)); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for _, m := range l.Metas[:metas] {
		for _, key := range []string{m.Before, m.After} {
			err := os.Remove(t.keyPath(key, node.MetaFile+pendingSuffix))
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
		}
	}
	if created && l.Created != "" {
		if err := os.RemoveAll(t.keyPath(l.Created)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
