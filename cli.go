package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skridlevsky/codex/types"
)

// cliCommands returns the one-shot subcommands that act on the tree directly.
func cliCommands() []*cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the journal and desk nodes in an empty data directory",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a node and print its key",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCreate,
	}
	createCmd.Flags().StringP("parent", "p", "", "Parent node key (default: the desk node)")
	createCmd.Flags().Bool("top", false, "Create a root node")

	linkCmd := &cobra.Command{
		Use:   "link <text> <from> <to>",
		Short: "Link two nodes",
		Args:  cobra.ExactArgs(3),
		RunE:  runLink,
	}
	linkCmd.Flags().Uint64("from-line", 0, "Line of the link in the source body")
	linkCmd.Flags().Uint64("from-char", 0, "Column of the link in the source body")
	linkCmd.Flags().Uint64("to-line", 0, "Line the link points at in the target body")
	linkCmd.Flags().Uint64("to-char", 0, "Column the link points at in the target body")

	todayCmd := &cobra.Command{
		Use:   "today",
		Short: "Print the key of today's journal entry, creating it if needed",
		Args:  cobra.NoArgs,
		RunE:  runToday,
	}

	nextCmd := &cobra.Command{
		Use:   "next <key>",
		Short: "Print the key of the next sibling",
		Args:  cobra.ExactArgs(1),
		RunE:  runNext,
	}
	nextCmd.Flags().Bool("previous", false, "Step backwards")

	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "List nodes by most recent update",
		Args:  cobra.NoArgs,
		RunE:  runRecent,
	}
	recentCmd.Flags().IntP("limit", "n", 10, "Max results")

	tagCmd := &cobra.Command{
		Use:   "tag <key> <tag>",
		Short: "Tag a node",
		Args:  cobra.ExactArgs(2),
		RunE:  runTag,
	}

	touchCmd := &cobra.Command{
		Use:   "touch <key>",
		Short: "Record an edit of a node made outside codex",
		Args:  cobra.ExactArgs(1),
		RunE:  runTouch,
	}

	appendCmd := &cobra.Command{
		Use:   "append <key> [text]",
		Short: "Append text (or stdin) to a node's body",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAppend,
	}

	return []*cobra.Command{initCmd, createCmd, linkCmd, todayCmd, nextCmd, recentCmd, tagCmd, touchCmd, appendCmd}
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	t, err := openTree(cfg, logger)
	if err != nil {
		return err
	}
	if err := t.LayFoundation(); err != nil {
		return err
	}
	journal, _ := t.Journal()
	desk, _ := t.Desk()
	fmt.Printf("Initialized %s (journal %s, desk %s)\n", t.Dir(), journal, desk)
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	parent, err := cmd.Flags().GetString("parent")
	if err != nil {
		return err
	}
	atRoot, err := cmd.Flags().GetBool("top")
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

	if parent == "" && !atRoot {
		desk, ok := t.Desk()
		if !ok {
			return fmt.Errorf("no desk node: run 'codex init' or pass --parent")
		}
		parent = desk
	}

	id, err := t.CreateNode(parent, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func runLink(cmd *cobra.Command, args []string) error {
	var pos [4]uint64
	for i, name := range []string{"from-line", "from-char", "to-line", "to-char"} {
		v, err := cmd.Flags().GetUint64(name)
		if err != nil {
			return err
		}
		pos[i] = v
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	t, err := openTree(cfg, logger)
	if err != nil {
		return err
	}

	text, from, to := args[0], args[1], args[2]
	if err := t.Link(text, from, pos[0], pos[1], to, pos[2], pos[3]); err != nil {
		return err
	}
	l, err := t.GetLink(from, text)
	if err != nil {
		return err
	}
	fmt.Printf("%s -> %s (%s, %d)\n", from, l.Target, l.Variant(), l.Timestamp)
	return nil
}

func runToday(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	t, err := openTree(cfg, logger)
	if err != nil {
		return err
	}

	id, err := t.TodayNode()
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func runNext(cmd *cobra.Command, args []string) error {
	previous, err := cmd.Flags().GetBool("previous")
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

	id, err := t.NextSibling(args[0], previous)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func runRecent(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
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

	nodes := t.NodesByRecency()
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	for _, n := range nodes {
		s := types.Summarize(n)
		fmt.Printf("%s | %s | %s\n", s.Updated.Format("2006-01-02 15:04"), s.ID, s.DisplayName)
	}
	return nil
}

func runTag(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	t, err := openTree(cfg, logger)
	if err != nil {
		return err
	}
	return t.Tag(args[0], args[1])
}

func runTouch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	t, err := openTree(cfg, logger)
	if err != nil {
		return err
	}
	return t.Touch(args[0])
}

func runAppend(cmd *cobra.Command, args []string) error {
	text := readContent(args[1:])
	if text == "" {
		return fmt.Errorf("no content provided")
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	t, err := openTree(cfg, logger)
	if err != nil {
		return err
	}
	if err := t.AppendBody(args[0], text); err != nil {
		return err
	}
	fmt.Printf("Appended to %s\n", args[0])
	return nil
}

// --- Helpers ---

// readContent gets content from positional args or stdin (if piped).
func readContent(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}

	// Only read stdin if it's piped (not a terminal).
	stat, err := os.Stdin.Stat()
	if err != nil {
		return ""
	}
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return "" // stdin is a terminal, not piped
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
