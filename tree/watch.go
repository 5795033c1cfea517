package tree

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/skridlevsky/codex/node"
)

// DefaultDebounce is how long Watch waits for a burst of changes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watch reloads the tree whenever node directories or metadata files change
// on disk, for example after a git pull. It blocks until ctx is done.
func (t *Tree) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := t.watchDirs(w, t.dir); err != nil {
		return err
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(t.dir, ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				// New directories must be watched too; files are ignored by watchDirs.
				if err := t.watchDirs(w, ev.Name); err != nil {
					t.logger.Debug("watch new path", "path", ev.Name, "err", err)
				}
			}
			pending = time.After(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			t.logger.Warn("watcher error", "err", err)

		case <-pending:
			pending = nil
			if err := t.Load(); err != nil {
				t.logger.Error("reload after change failed", "err", err)
				continue
			}
			t.logger.Info("reloaded after change", "nodes", t.Len())
		}
	}
}

// watchDirs adds root and every non-hidden directory below it.
func (t *Tree) watchDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != t.dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// relevant reports whether ev can change the loaded structure. Temporary
// files from atomic writes and anything in hidden directories are ignored.
func relevant(root string, ev fsnotify.Event) bool {
	rel, err := filepath.Rel(root, ev.Name)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." {
			return false
		}
	}
	base := filepath.Base(ev.Name)
	if base == node.MetaFile {
		return true
	}
	if strings.HasSuffix(base, ".tmp") || strings.HasSuffix(base, pendingSuffix) || base == node.ContentFile {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
