// Package config resolves where the tree lives and how the process logs.
// Values come from defaults, then an optional TOML file, then the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables read by Load.
const (
	EnvHome     = "CODEX_HOME"
	EnvRoot     = "CODEX_ROOT"
	EnvLogLevel = "CODEX_LOG_LEVEL"
)

// FileName is the configuration file looked up inside the config home.
const FileName = "codex.toml"

const (
	defaultHome       = "~/.config/codex"
	defaultRoot       = "~/.local/share/codex/data"
	defaultDateFormat = "Mon Jan 02 2006"
)

// Config holds the settings shared by every subcommand.
type Config struct {
	// Root is the data directory holding the node tree.
	Root string `toml:"root"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
	// JournalDateFormat is a Go time layout naming daily journal entries.
	JournalDateFormat string `toml:"journal_date_format"`
	// Git stages structural changes in a git working copy at Root.
	Git bool `toml:"git"`
	// Watch reloads the tree on external changes while serving.
	Watch bool `toml:"watch"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Root:              defaultRoot,
		LogLevel:          "info",
		JournalDateFormat: defaultDateFormat,
		Git:               true,
	}
}

// Load builds the configuration. A missing file is not an error.
func Load() (Config, error) {
	home := os.Getenv(EnvHome)
	if home == "" {
		home = defaultHome
	}
	home, err := homedir.Expand(home)
	if err != nil {
		return Config{}, fmt.Errorf("config home: %w", err)
	}
	return LoadFile(filepath.Join(home, FileName))
}

// LoadFile is Load with an explicit file path.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvRoot); v != "" {
		cfg.Root = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	cfg.Root, err = homedir.Expand(cfg.Root)
	if err != nil {
		return Config{}, fmt.Errorf("expand root: %w", err)
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// Logger returns a text logger on stderr at the configured level.
func (c Config) Logger() *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
