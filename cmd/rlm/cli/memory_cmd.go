package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/memory"
)

func newMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Session working-memory operations",
	}
	cmd.AddCommand(newMemoryAddCmd())
	cmd.AddCommand(newMemoryShowCmd())
	cmd.AddCommand(newMemoryClearCmd())
	return cmd
}

func newMemoryAddCmd() *cobra.Command {
	var tag, source string
	var scope []string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Append a tagged entry to this session's working memory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if !memory.ValidTag(tag) {
				return printError(fmt.Errorf("%w: %q (want finding|hypothesis|decision|context|todo)",
					memory.ErrInvalidTag, tag))
			}

			sessionID, err := currentSessionID("")
			if err != nil {
				return printError(err)
			}

			entry := memory.Entry{
				Tag:    memory.Tag(tag),
				Scope:  scope,
				Text:   strings.Join(args, " "),
				Source: source,
			}
			if err := memory.AddEntry(sessionID, entry); err != nil {
				return printError(err)
			}
			fmt.Printf("Added [%s] entry to session %s\n", tag, sessionID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&tag, "tag", "t", string(memory.TagFinding), "entry tag: finding|hypothesis|decision|context|todo")
	cmd.Flags().StringSliceVarP(&scope, "scope", "s", nil, "scope labels for this entry")
	cmd.Flags().StringVar(&source, "source", "", "where this entry came from (file, command, url)")
	return cmd
}

func newMemoryShowCmd() *cobra.Command {
	var last int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show this session's working memory",
		RunE: func(_ *cobra.Command, _ []string) error {
			sessionID, err := currentSessionID("")
			if err != nil {
				return printError(err)
			}
			wm, err := memory.Load(sessionID)
			if err != nil {
				return printError(err)
			}
			if wm == nil || len(wm.Entries) == 0 {
				fmt.Println("Working memory is empty.")
				return nil
			}
			fmt.Println(memory.Format(wm, last))
			return nil
		},
	}
	cmd.Flags().IntVar(&last, "last", 0, "show only the last N entries (default 20)")
	return cmd
}

func newMemoryClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove this session's working memory without consolidating",
		RunE: func(_ *cobra.Command, _ []string) error {
			if !force {
				return printError(errors.New("refusing to discard working memory without --force; use 'rlm consolidate' to keep a summary"))
			}
			if err := memory.Clear(); err != nil {
				return printError(err)
			}
			fmt.Println("Working memory cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "discard without consolidating")
	return cmd
}
