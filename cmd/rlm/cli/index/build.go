package index

import (
	"context"
	"log/slog"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/commit"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/gitx"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/logging"
)

// Build reads up to limit commits from git log, parses each record, and
// populates a fresh index stamped with the current HEAD. Records that fail to
// parse (non-conventional subjects, merge noise) are skipped, not fatal.
func Build(ctx context.Context, repo *gitx.Repo, limit int) (*TrailerIndex, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, err
	}

	output, err := repo.LogRecords(ctx, limit)
	if err != nil {
		return nil, err
	}

	ix := New(head)
	skipped := 0
	for _, record := range commit.SplitRecords(output) {
		sc, err := commit.ParseRecord(record)
		if err != nil {
			skipped++
			continue
		}
		ix.Add(sc)
	}

	logging.Debug(logging.WithComponent(ctx, "index"), "index built",
		slog.Int("commits", ix.CommitCount),
		slog.Int("skipped", skipped),
		slog.String("head", head),
	)
	return ix, nil
}
