package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/skridlevsky/codex/config"
	"github.com/skridlevsky/codex/tree"
	"github.com/skridlevsky/codex/vcs"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "codex",
		Short: "Hierarchical markdown note store",
		Long: `Codex keeps notes as a tree of directories. Each node holds a markdown
body and a meta.toml with its tags, links and backlinks.

The data directory comes from codex.toml in $CODEX_HOME (default
~/.config/codex) or from $CODEX_ROOT.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("root", "", "Data directory (overrides config)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tree over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().Bool("read-only", false, "Disable all write operations")
	serveCmd.Flags().Bool("watch", false, "Reload when the data directory changes on disk")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("codex %s\n", version)
		},
	}

	rootCmd.AddCommand(serveCmd, versionCmd)
	rootCmd.AddCommand(cliCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	readOnly, err := cmd.Flags().GetBool("read-only")
	if err != nil {
		return err
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	t, err := openTree(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watch || cfg.Watch {
		go func() {
			if err := t.Watch(ctx, tree.DefaultDebounce); err != nil {
				logger.Error("watch stopped", "err", err)
			}
		}()
	}

	srv := newServer(t, readOnly)
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("codex: %w", err)
	}
	return nil
}

// loadConfig reads the configuration and applies the --root flag.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		cfg.Root = root
	}
	return cfg, cfg.Logger(), nil
}

// openTree loads the tree at cfg.Root, creating the directory if needed.
func openTree(cfg config.Config, logger *slog.Logger) (*tree.Tree, error) {
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	opts := []tree.Option{
		tree.WithLogger(logger),
		tree.WithDateFormat(cfg.JournalDateFormat),
	}
	if cfg.Git {
		g, err := vcs.OpenGit(cfg.Root)
		if err != nil {
			logger.Warn("git staging disabled", "root", cfg.Root, "err", err)
		} else {
			opts = append(opts, tree.WithStager(g))
		}
	} else {
		checkVersionControl(cfg.Root, logger)
	}

	t := tree.New(cfg.Root, opts...)
	if err := t.Load(); err != nil {
		return nil, err
	}
	return t, nil
}

// checkVersionControl warns when the data directory is not git-controlled.
func checkVersionControl(root string, logger *slog.Logger) {
	if _, err := os.Stat(filepath.Join(root, ".git")); os.IsNotExist(err) {
		logger.Warn("data directory is not version controlled; writes cannot be undone", "root", root)
	}
}
