package vcs

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestNopStage(t *testing.T) {
	var s Stager = Nop{}
	if err := s.Stage("a", "b"); err != nil {
		t.Fatalf("Nop.Stage: %v", err)
	}
}

func TestGitStage(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()

	g, err := OpenGit(dir)
	if err != nil {
		t.Fatalf("OpenGit: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		t.Fatalf("repo not initialised: %v", err)
	}

	note := filepath.Join(dir, "1-journal", "meta.toml")
	if err := os.MkdirAll(filepath.Dir(note), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(note, []byte("name = \"journal\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := g.Stage(filepath.Dir(note)); err != nil {
		t.Fatalf("Stage: %v", err)
	}

	cmd := exec.Command("git", "diff", "--cached", "--name-only")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git diff: %v", err)
	}
	if !strings.Contains(string(out), "1-journal/meta.toml") {
		t.Errorf("staged files = %q", out)
	}

	// Reopening an existing repo (no remote configured) still stages.
	again, err := OpenGit(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := again.Stage(); err != nil {
		t.Fatalf("empty Stage: %v", err)
	}
}
