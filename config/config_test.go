package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Missing(t *testing.T) {
	t.Setenv(EnvRoot, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)

	home, err := homedir.Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local/share/codex/data"), cfg.Root)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "Mon Jan 02 2006", cfg.JournalDateFormat)
	assert.True(t, cfg.Git)
	assert.False(t, cfg.Watch)
}

func TestLoadFile_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
root = "/srv/notes"
log_level = "warn"
journal_date_format = "2006-01-02"
git = false
watch = true
`), 0o644))

	t.Setenv(EnvRoot, "")
	t.Setenv(EnvLogLevel, "")
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Root:              "/srv/notes",
		LogLevel:          "warn",
		JournalDateFormat: "2006-01-02",
		Git:               false,
		Watch:             true,
	}, cfg)

	t.Setenv(EnvRoot, "/tmp/override")
	t.Setenv(EnvLogLevel, "debug")
	cfg, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override", cfg.Root)
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvRoot, "")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("root = ["), 0o644))
	_, err := LoadFile(bad)
	assert.ErrorContains(t, err, "parse config")

	t.Setenv(EnvLogLevel, "loud")
	_, err = LoadFile(filepath.Join(dir, "none.toml"))
	assert.ErrorContains(t, err, "log level")
}

func TestLoad_UsesHome(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, FileName), []byte(`root = "/from/home"`), 0o644))
	t.Setenv(EnvHome, home)
	t.Setenv(EnvRoot, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/from/home", cfg.Root)
}
