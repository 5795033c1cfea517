// Package vcs stages changed note paths in the version-control system that
// holds the tree. Committing, pushing and pulling happen elsewhere.
package vcs

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Masterminds/vcs"
)

// Stager records paths as changed in the working copy's index.
type Stager interface {
	Stage(paths ...string) error
}

// Nop is a Stager that does nothing.
type Nop struct{}

// Stage implements Stager.
func (Nop) Stage(...string) error { return nil }

// Git stages paths in a git working copy.
type Git struct {
	dir  string
	repo *vcs.GitRepo // nil when opened on an existing repo without a remote
}

// OpenGit opens the git working copy at dir, running `git init` when dir is
// not under version control yet.
func OpenGit(dir string) (*Git, error) {
	typ, err := vcs.DetectVcsFromFS(dir)
	switch {
	case err == nil && typ != vcs.Git:
		return nil, fmt.Errorf("open %s: %w", dir, vcs.ErrWrongVCS)
	case err == nil:
		repo, rerr := vcs.NewGitRepo("", dir)
		if rerr != nil {
			// A local repo without an origin remote cannot be described by
			// vcs.GitRepo; staging still works through plain git.
			return &Git{dir: dir}, nil
		}
		return &Git{dir: dir, repo: repo}, nil
	case !errors.Is(err, vcs.ErrCannotDetectVCS):
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}

	repo, err := vcs.NewGitRepo("", dir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	if err := repo.Init(); err != nil {
		return nil, fmt.Errorf("git init %s: %w", dir, err)
	}
	return &Git{dir: dir, repo: repo}, nil
}

// Stage runs `git add -A` for paths, which also records the removal side
// of a directory rename.
func (g *Git) Stage(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "-A", "--"}, paths...)
	out, err := g.run(args...)
	if err != nil {
		return fmt.Errorf("git add: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (g *Git) run(args ...string) ([]byte, error) {
	if g.repo != nil {
		return g.repo.RunFromDir("git", args...)
	}
	cmd := exec.Command("git", args...)
	cmd.Dir = g.dir
	return cmd.CombinedOutput()
}
