package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/gitx"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/index"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/memory"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/rlm"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/rlm/sandbox"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/settings"
)

func newAskCmd() *cobra.Command {
	var trace bool

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Ask the RLM loop a question about the commit history",
		Long: "Runs the recursive language-model loop against the trailer index: the " +
			"local LLM writes JavaScript, the sandbox executes it, and the loop " +
			"continues until the model signals done or a budget runs out.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings.Load()
			if err != nil {
				return printError(err)
			}
			if !cfg.Enabled {
				return printError(errors.New("rlm is disabled; run 'rlm enable' first"))
			}

			env, repo, err := loadReplEnv(cmd.Context())
			if err != nil {
				return printError(err)
			}

			result, err := runRepl(cmd.Context(), cfg, strings.Join(args, " "), env, repo)
			if err != nil {
				return printError(err)
			}

			if trace {
				for _, entry := range result.Trace {
					fmt.Printf("--- iteration %d (%d sub-calls) ---\n%s\n=> %s\n",
						entry.Iteration, entry.SubCalls, entry.Code, entry.Result)
				}
				fmt.Printf("--- %d iterations, %d llm calls ---\n", result.Iterations, result.LlmCalls)
			}
			fmt.Println(result.Answer)
			return nil
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "print the per-iteration execution trace")
	return cmd
}

// loadReplEnv assembles the sandbox environment: a fresh-or-live index view,
// working memory, and the scope-key list.
func loadReplEnv(ctx context.Context) (sandbox.Env, *gitx.Repo, error) {
	repo, err := gitx.Open()
	if err != nil {
		return sandbox.Env{}, nil, err
	}

	ix, err := index.LoadFresh(repo)
	if err != nil {
		return sandbox.Env{}, nil, err
	}
	if ix == nil {
		// Stale or missing index: build an in-memory one from live git log.
		ix, err = index.Build(ctx, repo, 0)
		if err != nil {
			return sandbox.Env{}, nil, err
		}
	}

	env := sandbox.Env{Index: ix, ScopeKeys: ix.ScopeKeys()}
	if sessionID, err := currentSessionID(""); err == nil {
		if wm, err := memory.Load(sessionID); err == nil {
			env.WorkingMemory = wm
		}
	}
	return env, repo, nil
}

// runRepl wires the configured LLM client and the sanitized git log effect
// into the REPL loop.
func runRepl(ctx context.Context, cfg *settings.Settings, prompt string, env sandbox.Env, repo *gitx.Repo) (*rlm.Result, error) {
	rc := rlm.ReplConfigFrom(cfg)
	client := rlm.NewClient(cfg).WithMaxTokens(rc.MaxOutputTokens)
	return rlm.Run(ctx, rc, prompt, env,
		client.Chat,
		func(ctx context.Context, args []string) (string, error) {
			return repo.Log(ctx, args...)
		},
	)
}
