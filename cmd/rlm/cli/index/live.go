package index

import (
	"context"
	"regexp"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/commit"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/gitx"
)

// liveGrepLimit bounds how many commits a live fallback reads.
const liveGrepLimit = 200

// LiveSearch answers a query without a fresh index by grepping git log
// directly, parsing the matching records into a throwaway index, and running
// the normal intersection over it. Used when the persisted index is stale.
func LiveSearch(ctx context.Context, repo *gitx.Repo, q Query) ([]IndexedCommit, error) {
	pattern := grepPattern(q)
	if pattern == "" {
		return []IndexedCommit{}, nil
	}

	output, err := repo.LogGrep(ctx, pattern, liveGrepLimit)
	if err != nil {
		return nil, err
	}

	ix := New("")
	for _, record := range commit.SplitRecords(output) {
		sc, err := commit.ParseRecord(record)
		if err != nil {
			continue
		}
		ix.Add(sc)
	}
	return ix.Search(q), nil
}

// grepPattern picks the most selective query term as the git log --grep
// pattern; the precise filtering happens in Search afterwards.
func grepPattern(q Query) string {
	switch {
	case q.Scope != "":
		return "Scope:.*" + regexp.QuoteMeta(q.Scope)
	case q.Session != "":
		return "Session: " + regexp.QuoteMeta(q.Session)
	case q.DecidedAgainst != "":
		return "Decided-Against:.*" + regexp.QuoteMeta(q.DecidedAgainst)
	case len(q.Intents) > 0:
		return "Intent: " + regexp.QuoteMeta(q.Intents[0])
	default:
		return ""
	}
}
