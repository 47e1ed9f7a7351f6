package index

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/gitx"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/jsonutil"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/paths"
)

// Save persists the index as pretty-printed JSON at the standard location.
func Save(ix *TrailerIndex) error {
	path, err := paths.TrailerIndexPath()
	if err != nil {
		return err
	}
	if err := jsonutil.MarshalIndentToFile(path, ix, 0o600); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return nil
}

// Load reads the persisted index without a freshness check.
// Returns (nil, nil) when no index file exists.
func Load() (*TrailerIndex, error) {
	path, err := paths.TrailerIndexPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads an index file from an explicit path.
// Returns (nil, nil) when the file does not exist.
func LoadFrom(path string) (*TrailerIndex, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from paths package or caller
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading index: %w", err)
	}

	var ix TrailerIndex
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("parsing index: %w", err)
	}
	if ix.ByIntent == nil {
		ix.ByIntent = map[string][]string{}
	}
	if ix.ByScope == nil {
		ix.ByScope = map[string][]string{}
	}
	if ix.BySession == nil {
		ix.BySession = map[string][]string{}
	}
	if ix.Commits == nil {
		ix.Commits = map[string]IndexedCommit{}
	}
	ix.rebuildOrder()
	return &ix, nil
}

// LoadFresh loads the persisted index and verifies it against the current
// HEAD. A stale or absent index yields (nil, nil); callers fall back to live
// git log.
func LoadFresh(repo *gitx.Repo) (*TrailerIndex, error) {
	ix, err := Load()
	if err != nil || ix == nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, err
	}
	if ix.HeadCommit != head {
		return nil, nil
	}
	return ix, nil
}
