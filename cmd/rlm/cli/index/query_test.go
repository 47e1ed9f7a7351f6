package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/commit"
)

// testIndex mirrors the three-commit fixture used across query tests:
// aaa{scope:[auth/login], intent:fix-defect}
// bbb{scope:[cache], intent:fix-defect, decidedAgainst:[Redis sentinel]}
// ccc{scope:[auth], intent:enable-capability}
func testIndex() *TrailerIndex {
	ix := New("head0")
	ix.Add(&commit.StructuredCommit{
		Hash: "aaa", Date: "2026-01-03T10:00:00Z", Subject: "fix login",
		Intent: commit.IntentFixDefect, Scope: []string{"auth/login"},
	})
	ix.Add(&commit.StructuredCommit{
		Hash: "bbb", Date: "2026-01-02T10:00:00Z", Subject: "fix cache",
		Intent: commit.IntentFixDefect, Scope: []string{"cache"},
		DecidedAgainst: []string{"Redis sentinel"},
	})
	ix.Add(&commit.StructuredCommit{
		Hash: "ccc", Date: "2026-01-01T10:00:00Z", Subject: "add auth",
		Intent: commit.IntentEnableCapability, Scope: []string{"auth"},
		Session: "2026-01-01/auth-work",
	})
	return ix
}

func hashes(results []IndexedCommit) []string {
	out := make([]string, len(results))
	for i, ic := range results {
		out[i] = ic.Hash
	}
	return out
}

func TestSearch_ScopeHierarchy(t *testing.T) {
	ix := testIndex()
	assert.Equal(t, []string{"aaa", "ccc"}, hashes(ix.Search(Query{Scope: "auth"})))
}

func TestSearch_DecidedAgainstWordBoundary(t *testing.T) {
	ix := testIndex()
	assert.Equal(t, []string{"bbb"}, hashes(ix.Search(Query{DecidedAgainst: "Redis"})))
	assert.Empty(t, ix.Search(Query{DecidedAgainst: "Red"}))
}

func TestSearch_IntersectingFilters(t *testing.T) {
	ix := testIndex()
	assert.Equal(t, []string{"bbb"}, hashes(ix.Search(Query{
		Intents: []string{"fix-defect"},
		Scope:   "cache",
	})))
	assert.Empty(t, ix.Search(Query{
		Intents: []string{"enable-capability"},
		Scope:   "cache",
	}))
}

func TestSearch_Session(t *testing.T) {
	ix := testIndex()
	assert.Equal(t, []string{"ccc"}, hashes(ix.Search(Query{Session: "2026-01-01/auth-work"})))
}

func TestSearch_NoFiltersReturnsEmpty(t *testing.T) {
	ix := testIndex()
	assert.Empty(t, ix.Search(Query{}))
	assert.Empty(t, ix.Search(Query{Limit: 5}))
}

func TestSearch_Limit(t *testing.T) {
	ix := testIndex()
	results := ix.Search(Query{Intents: []string{"fix-defect"}, Limit: 1})
	assert.Equal(t, []string{"aaa"}, hashes(results))
}

func TestSearch_UnknownDimensions(t *testing.T) {
	ix := testIndex()
	assert.Empty(t, ix.Search(Query{Scope: "billing"}))
	assert.Empty(t, ix.Search(Query{Session: "2020-01-01/nope"}))
	assert.Empty(t, ix.Search(Query{Intents: []string{"restructure"}}))
}

func TestAdd_BucketInvariants(t *testing.T) {
	ix := testIndex()

	// Every hash in any bucket maps to a key in Commits.
	for intent, bucket := range ix.ByIntent {
		for _, h := range bucket {
			ic, ok := ix.Commits[h]
			require.True(t, ok, "byIntent[%s] hash %s missing from commits", intent, h)
			assert.Equal(t, commit.Intent(intent), ic.Intent)
		}
	}
	for _, bucket := range ix.ByScope {
		for _, h := range bucket {
			_, ok := ix.Commits[h]
			require.True(t, ok)
		}
	}
	for _, h := range ix.WithDecidedAgainst {
		ic, ok := ix.Commits[h]
		require.True(t, ok)
		assert.NotEmpty(t, ic.DecidedAgainst)
	}

	// Every stored intent implies bucket membership.
	for h, ic := range ix.Commits {
		if ic.Intent == "" {
			continue
		}
		assert.Contains(t, ix.ByIntent[string(ic.Intent)], h)
	}
}

func TestAdd_DuplicateHashIgnored(t *testing.T) {
	ix := testIndex()
	ix.Add(&commit.StructuredCommit{Hash: "aaa", Intent: commit.IntentExplore})
	assert.Equal(t, 3, ix.CommitCount)
	assert.Equal(t, commit.IntentFixDefect, ix.Commits["aaa"].Intent)
}

func TestScopeKeys_InsertionOrder(t *testing.T) {
	ix := testIndex()
	assert.Equal(t, []string{"auth/login", "cache", "auth"}, ix.ScopeKeys())
}
