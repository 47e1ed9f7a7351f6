package index

import (
	"sort"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/commit"
)

// DefaultQueryLimit bounds result size when a query gives no limit.
const DefaultQueryLimit = 20

// Query selects commits by trailer dimensions. Zero-valued fields are
// unconstrained; a query with no filters at all returns nothing, by design:
// the API is "commits matching these dimensions", not "all commits".
type Query struct {
	Scope          string   `json:"scope,omitempty"`
	Intents        []string `json:"intents,omitempty"`
	Session        string   `json:"session,omitempty"`
	DecidedAgainst string   `json:"decidedAgainst,omitempty"`
	Limit          int      `json:"limit,omitempty"`
}

// Search runs the intersection algorithm: each present filter narrows the
// candidate set, results keep index insertion order, truncated to the limit.
func (ix *TrailerIndex) Search(q Query) []IndexedCommit {
	// constrained stays false until a filter applies; after that, an empty
	// candidates slice (nil included) means "no matches".
	var candidates []string
	constrained := false

	narrow := func(hashes []string) {
		if !constrained {
			candidates = hashes
			constrained = true
			return
		}
		keep := make(map[string]bool, len(hashes))
		for _, h := range hashes {
			keep[h] = true
		}
		var next []string
		for _, h := range candidates {
			if keep[h] {
				next = append(next, h)
			}
		}
		candidates = next
	}

	if len(q.Intents) > 0 {
		var union []string
		for _, intent := range q.Intents {
			union = append(union, ix.ByIntent[intent]...)
		}
		narrow(union)
	}

	if q.Session != "" {
		narrow(ix.BySession[q.Session])
	}

	if q.DecidedAgainst != "" {
		var matched []string
		for _, h := range ix.WithDecidedAgainst {
			for _, rejection := range ix.Commits[h].DecidedAgainst {
				if commit.WordBoundaryMatch(rejection, q.DecidedAgainst) {
					matched = append(matched, h)
					break
				}
			}
		}
		narrow(matched)
	}

	if q.Scope != "" {
		var union []string
		for key, hashes := range ix.ByScope {
			if commit.ScopeMatches(key, q.Scope) {
				union = append(union, hashes...)
			}
		}
		narrow(union)
	}

	if !constrained {
		return []IndexedCommit{}
	}

	candidates = dedupe(candidates)
	sort.SliceStable(candidates, func(i, j int) bool {
		return ix.insertionRank(candidates[i]) < ix.insertionRank(candidates[j])
	})

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]IndexedCommit, 0, len(candidates))
	for _, h := range candidates {
		if ic, ok := ix.Commits[h]; ok {
			results = append(results, ic)
		}
	}
	return results
}

func dedupe(hashes []string) []string {
	seen := make(map[string]bool, len(hashes))
	var out []string
	for _, h := range hashes {
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	return out
}
