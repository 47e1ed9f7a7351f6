package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/gitx"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/index"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/paths"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build and inspect the trailer index",
	}
	cmd.AddCommand(newIndexBuildCmd())
	cmd.AddCommand(newIndexStatusCmd())
	return cmd
}

func newIndexBuildCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Index commit trailers from git log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := gitx.Open()
			if err != nil {
				return printError(err)
			}

			ix, err := index.Build(cmd.Context(), repo, limit)
			if err != nil {
				return printError(err)
			}
			if err := index.Save(ix); err != nil {
				return printError(err)
			}

			path, _ := paths.TrailerIndexPath()
			fmt.Printf("Indexed %d commits (%d scope keys) -> %s\n", ix.CommitCount, len(ix.ByScope), path)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "index only the last N commits (0 = all)")
	return cmd
}

func newIndexStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show index freshness and size",
		RunE: func(_ *cobra.Command, _ []string) error {
			repo, err := gitx.Open()
			if err != nil {
				return printError(err)
			}

			ix, err := index.Load()
			if err != nil {
				return printError(err)
			}
			if ix == nil {
				fmt.Println("No index. Run 'rlm index build'.")
				return nil
			}

			head, err := repo.Head()
			if err != nil {
				return printError(err)
			}

			fmt.Printf("Commits:   %d\n", ix.CommitCount)
			fmt.Printf("Generated: %s\n", ix.Generated)
			fmt.Printf("Head:      %s\n", ix.HeadCommit)
			if ix.HeadCommit == head {
				fmt.Println("Freshness: current")
			} else {
				fmt.Printf("Freshness: stale (HEAD is %s); hooks fall back to live git log\n", head)
			}
			return nil
		},
	}
}
