// Package index builds, persists, and queries the inverted trailer index.
//
// The index maps intents, scope keys, and session IDs to commit hashes; scope
// keys are stored verbatim and hierarchical matching happens at query time.
package index

import (
	"sort"
	"time"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/commit"
)

// CurrentVersion is the persisted index schema version.
const CurrentVersion = 1

// IndexedCommit is the compact per-commit form stored in the index.
type IndexedCommit struct {
	Hash           string        `json:"hash"`
	Date           string        `json:"date"`
	Subject        string        `json:"subject"`
	Intent         commit.Intent `json:"intent,omitempty"`
	Scope          []string      `json:"scope,omitempty"`
	Session        string        `json:"session,omitempty"`
	DecidedAgainst []string      `json:"decidedAgainst,omitempty"`
}

// TrailerIndex is the persisted inverted index.
type TrailerIndex struct {
	Version     int    `json:"version"`
	Generated   string `json:"generated"`
	HeadCommit  string `json:"headCommit"`
	CommitCount int    `json:"commitCount"`

	ByIntent           map[string][]string      `json:"byIntent"`
	ByScope            map[string][]string      `json:"byScope"`
	BySession          map[string][]string      `json:"bySession"`
	WithDecidedAgainst []string                 `json:"withDecidedAgainst"`
	Commits            map[string]IndexedCommit `json:"commits"`

	// order preserves insertion order of hashes for result ordering; it is
	// not persisted, and rebuildOrder reconstructs it from commit dates on load.
	order map[string]int
}

// New returns an empty index stamped with the current time and head commit.
func New(headCommit string) *TrailerIndex {
	return &TrailerIndex{
		Version:    CurrentVersion,
		Generated:  time.Now().UTC().Format(time.RFC3339),
		HeadCommit: headCommit,
		ByIntent:   map[string][]string{},
		ByScope:    map[string][]string{},
		BySession:  map[string][]string{},
		Commits:    map[string]IndexedCommit{},
		order:      map[string]int{},
	}
}

// Add inserts one parsed commit into every applicable bucket.
func (ix *TrailerIndex) Add(sc *commit.StructuredCommit) {
	if _, exists := ix.Commits[sc.Hash]; exists {
		return
	}

	ic := IndexedCommit{
		Hash:           sc.Hash,
		Date:           sc.Date,
		Subject:        sc.Subject,
		Intent:         sc.Intent,
		Scope:          sc.Scope,
		Session:        sc.Session,
		DecidedAgainst: sc.DecidedAgainst,
	}
	ix.order[sc.Hash] = len(ix.Commits)
	ix.Commits[sc.Hash] = ic
	ix.CommitCount = len(ix.Commits)

	if sc.Intent != "" {
		ix.ByIntent[string(sc.Intent)] = append(ix.ByIntent[string(sc.Intent)], sc.Hash)
	}
	for _, scope := range sc.Scope {
		ix.ByScope[scope] = append(ix.ByScope[scope], sc.Hash)
	}
	if sc.Session != "" {
		ix.BySession[sc.Session] = append(ix.BySession[sc.Session], sc.Hash)
	}
	if len(sc.DecidedAgainst) > 0 {
		ix.WithDecidedAgainst = append(ix.WithDecidedAgainst, sc.Hash)
	}
}

// ScopeKeys returns the stored scope keys in insertion order.
func (ix *TrailerIndex) ScopeKeys() []string {
	keys := make([]string, 0, len(ix.ByScope))
	for k := range ix.ByScope {
		keys = append(keys, k)
	}
	sortByFirstUse(keys, ix)
	return keys
}

func sortByFirstUse(keys []string, ix *TrailerIndex) {
	rank := func(k string) int {
		bucket := ix.ByScope[k]
		if len(bucket) == 0 {
			return int(^uint(0) >> 1)
		}
		return ix.insertionRank(bucket[0])
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && rank(keys[j]) < rank(keys[j-1]); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
}

// insertionRank returns the order a hash was added, or a large value when the
// hash is unknown (possible only with a hand-edited index file).
func (ix *TrailerIndex) insertionRank(hash string) int {
	if r, ok := ix.order[hash]; ok {
		return r
	}
	return int(^uint(0) >> 1)
}

// rebuildOrder reconstructs insertion ranks after loading from disk. Builds
// insert in git log order (reverse chronological), so ranking by descending
// date restores it; hashes break ties deterministically.
func (ix *TrailerIndex) rebuildOrder() {
	hashes := make([]string, 0, len(ix.Commits))
	for h := range ix.Commits {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool {
		a, b := ix.Commits[hashes[i]], ix.Commits[hashes[j]]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		return hashes[i] < hashes[j]
	})
	ix.order = make(map[string]int, len(hashes))
	for rank, h := range hashes {
		ix.order[h] = rank
	}
}
