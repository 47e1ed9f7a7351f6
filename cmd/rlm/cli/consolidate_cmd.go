package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/memory"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/paths"
	"github.com/srdjan/rlm-git-commits/redact"
)

func newConsolidateCmd() *cobra.Command {
	var keep bool

	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Consolidate working memory into a session summary",
		Long: "Renders this session's working memory as a Markdown summary under the " +
			"repository metadata directory, prints commit-trailer suggestions, and " +
			"clears the working memory unless --keep is given.",
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
				fmt.Println("Working memory is empty; nothing to consolidate.")
				return nil
			}

			summaryPath, err := writeSessionSummary(wm)
			if err != nil {
				return printError(err)
			}
			fmt.Printf("Session summary written to %s\n", summaryPath)

			if hints := memory.FormatTrailerHints(memory.DecisionsToTrailers(wm.Entries)); hints != "" {
				fmt.Println("\nSuggested commit trailers:")
				fmt.Println(hints)
			}

			if !keep {
				if err := memory.Clear(); err != nil {
					return printError(err)
				}
				if err := paths.ClearCurrentSession(); err != nil {
					return printError(err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&keep, "keep", false, "keep working memory after consolidating")
	return cmd
}

// writeSessionSummary renders and persists the Markdown summary, redacted.
func writeSessionSummary(wm *memory.WorkingMemory) (string, error) {
	path, err := paths.SessionSummaryPath(wm.SessionID)
	if err != nil {
		return "", err
	}
	summary := redact.String(memory.FormatSessionSummary(wm))
	if err := os.WriteFile(path, []byte(summary), 0o600); err != nil {
		return "", fmt.Errorf("writing session summary: %w", err)
	}
	return path, nil
}
