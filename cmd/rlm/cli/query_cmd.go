package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/index"
)

func newQueryCmd() *cobra.Command {
	var q index.Query

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the trailer index",
		Long: "Queries the persisted trailer index by scope, intent, session, or " +
			"decided-against text. Filters intersect; at least one is required.",
		RunE: func(_ *cobra.Command, _ []string) error {
			ix, err := index.Load()
			if err != nil {
				return printError(err)
			}
			if ix == nil {
				fmt.Println("No index. Run 'rlm index build'.")
				return nil
			}

			results := ix.Search(q)
			if len(results) == 0 {
				fmt.Println("No matching commits.")
				return nil
			}
			for _, ic := range results {
				fmt.Println(formatIndexedCommit(ic))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&q.Scope, "scope", "", "hierarchical scope pattern (auth matches auth/*)")
	cmd.Flags().StringSliceVar(&q.Intents, "intent", nil, "intent filter (repeatable)")
	cmd.Flags().StringVar(&q.Session, "session", "", "session id filter")
	cmd.Flags().StringVar(&q.DecidedAgainst, "decided-against", "", "word-boundary match over rejection text")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "maximum results (default 20)")
	return cmd
}

func formatIndexedCommit(ic index.IndexedCommit) string {
	short := ic.Hash
	if len(short) > 8 {
		short = short[:8]
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s", short, ic.Date[:min(10, len(ic.Date))], ic.Subject)
	if ic.Intent != "" {
		sb.WriteString(" [" + string(ic.Intent) + "]")
	}
	if len(ic.Scope) > 0 {
		sb.WriteString(" (" + strings.Join(ic.Scope, ", ") + ")")
	}
	for _, d := range ic.DecidedAgainst {
		sb.WriteString("\n    decided-against: " + d)
	}
	return sb.String()
}
