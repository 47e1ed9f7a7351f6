package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/gitx"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/index"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/memory"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/paths"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/settings"
)

func newEnableCmd() *cobra.Command {
	var endpoint, model string
	var withRepl, yes bool

	cmd := &cobra.Command{
		Use:   "enable",
		Short: "Enable local-LLM analysis of the commit history",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := settings.Load()
			if err != nil {
				return printError(err)
			}

			cfg.Enabled = true
			if endpoint != "" {
				cfg.Endpoint = endpoint
			}
			if model != "" {
				cfg.Model = model
			}

			replEnabled := withRepl
			if !withRepl && !yes {
				form := NewAccessibleForm(
					huh.NewGroup(
						huh.NewConfirm().
							Title("Enable the RLM analysis loop?").
							Description("Lets a local LLM write sandboxed queries against the index on every prompt. Needs a running model server.").
							Value(&replEnabled),
					),
				)
				if err := form.Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return nil
					}
					return printError(fmt.Errorf("confirmation failed: %w", err))
				}
			}
			cfg.ReplEnabled = replEnabled

			if err := settings.Save(cfg); err != nil {
				return printError(err)
			}

			fmt.Println("rlm enabled.")
			if cfg.ReplEnabled {
				fmt.Printf("REPL on: %s (model %q)\n", cfg.Endpoint, cfg.Model)
			}
			fmt.Println("Run 'rlm index build' to index your commit trailers.")
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "local LLM endpoint (default "+settings.DefaultEndpoint+")")
	cmd.Flags().StringVar(&model, "model", "", "model name for the local LLM")
	cmd.Flags().BoolVar(&withRepl, "repl", false, "also enable the RLM REPL loop")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip interactive prompts")
	return cmd
}

func newDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Disable all LLM involvement",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := settings.Load()
			if err != nil {
				return printError(err)
			}
			cfg.Enabled = false
			cfg.ReplEnabled = false
			if err := settings.Save(cfg); err != nil {
				return printError(err)
			}
			fmt.Println("rlm disabled. Hooks still serve index lookups.")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, index freshness, and session state",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := settings.Load()
			if err != nil {
				return printError(err)
			}

			fmt.Printf("Enabled: %v (REPL: %v)\n", cfg.Enabled, cfg.ReplEnabled)
			if cfg.Enabled {
				fmt.Printf("LLM:     %s (model %q, %dms, %d tokens)\n",
					cfg.Endpoint, cfg.Model, cfg.TimeoutMs, cfg.MaxTokens)
			}

			repo, err := gitx.Open()
			if err != nil {
				fmt.Println("Repo:    not inside a git repository")
				return nil
			}
			if branch, err := repo.CurrentBranch(); err == nil {
				fmt.Printf("Branch:  %s\n", branch)
			}

			ix, err := index.Load()
			switch {
			case err != nil:
				fmt.Printf("Index:   unreadable (%v)\n", err)
			case ix == nil:
				fmt.Println("Index:   absent; run 'rlm index build'")
			default:
				head, headErr := repo.Head()
				state := "current"
				if headErr != nil || ix.HeadCommit != head {
					state = "stale"
				}
				fmt.Printf("Index:   %d commits, %s (built %s)\n", ix.CommitCount, state, ix.Generated)
			}

			if sessionID, err := paths.ReadCurrentSession(); err == nil && sessionID != "" {
				if wm, err := memory.Load(sessionID); err == nil && wm != nil {
					fmt.Printf("Memory:  %d entries in session %s\n", len(wm.Entries), sessionID)
				} else {
					fmt.Printf("Memory:  empty (session %s)\n", sessionID)
				}
			} else {
				fmt.Println("Memory:  no active session")
			}
			return nil
		},
	}
}
