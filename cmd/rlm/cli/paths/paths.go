// Package paths locates the repository metadata directory and the files the
// tool persists under it. Discovery shells out to git rev-parse, which works
// from any subdirectory and respects linked worktrees.
package paths

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/sessionid"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/validation"
)

// File names under <git-dir>/info.
const (
	TrailerIndexFileName  = "trailer-index.json"
	WorkingMemoryFileName = "working-memory.json"
	ConfigFileName        = "rlm-config.json"
	CurrentSessionFile    = "rlm-current-session"
	LogsDirName           = "rlm-logs"
)

// The rev-parse cache holds results to avoid repeated git commands.
// Keyed by the current working directory to handle directory changes.
var (
	cacheMu      sync.RWMutex
	rootCache    string
	gitDirCache  string
	cacheDirAtCo string
)

// RepoRoot returns the working-tree root via 'git rev-parse --show-toplevel'.
// Returns an error when not inside a git repository.
func RepoRoot() (string, error) {
	root, _, err := revParse()
	return root, err
}

// GitDir returns the absolute path of the repository's git directory
// (.git for a normal checkout, the per-worktree dir for linked worktrees).
func GitDir() (string, error) {
	_, gitDir, err := revParse()
	return gitDir, err
}

// InfoDir returns <git-dir>/info, creating it if necessary.
func InfoDir() (string, error) {
	gitDir, err := GitDir()
	if err != nil {
		return "", err
	}
	info := filepath.Join(gitDir, "info")
	if err := os.MkdirAll(info, 0o750); err != nil {
		return "", fmt.Errorf("creating info dir: %w", err)
	}
	return info, nil
}

func revParse() (root, gitDir string, err error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}

	cacheMu.RLock()
	if rootCache != "" && cacheDirAtCo == cwd {
		root, gitDir = rootCache, gitDirCache
		cacheMu.RUnlock()
		return root, gitDir, nil
	}
	cacheMu.RUnlock()

	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel", "--absolute-git-dir")
	output, err := cmd.Output()
	if err != nil {
		return "", "", fmt.Errorf("not inside a git repository: %w", err)
	}
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) < 2 {
		return "", "", fmt.Errorf("unexpected rev-parse output %q", string(output))
	}
	root, gitDir = strings.TrimSpace(lines[0]), strings.TrimSpace(lines[1])

	cacheMu.Lock()
	rootCache, gitDirCache, cacheDirAtCo = root, gitDir, cwd
	cacheMu.Unlock()
	return root, gitDir, nil
}

// ClearCache resets the rev-parse cache (for tests that change directories).
func ClearCache() {
	cacheMu.Lock()
	rootCache, gitDirCache, cacheDirAtCo = "", "", ""
	cacheMu.Unlock()
}

// TrailerIndexPath returns the path of the persisted trailer index.
func TrailerIndexPath() (string, error) { return infoFile(TrailerIndexFileName) }

// WorkingMemoryPath returns the path of the working-memory file.
func WorkingMemoryPath() (string, error) { return infoFile(WorkingMemoryFileName) }

// ConfigPath returns the path of the RLM configuration file.
func ConfigPath() (string, error) { return infoFile(ConfigFileName) }

// SessionSummaryPath returns the path of the session summary for a session ID.
// The slug portion is validated before being embedded in the file name.
func SessionSummaryPath(sessionID string) (string, error) {
	slug := sessionid.Slug(sessionID)
	if err := validation.ValidateSlug(slug); err != nil {
		return "", err
	}
	return infoFile("session-summary-" + slug + ".md")
}

func infoFile(name string) (string, error) {
	info, err := InfoDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(info, name), nil
}

// ReadCurrentSession returns the session ID persisted by a previous hook or
// CLI invocation, or "" when none is recorded.
func ReadCurrentSession() (string, error) {
	path, err := infoFile(CurrentSessionFile)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is built from git dir + constant
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading current session: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteCurrentSession records the session ID shared across hook invocations.
func WriteCurrentSession(sessionID string) error {
	if err := validation.ValidateSessionID(sessionID); err != nil {
		return err
	}
	path, err := infoFile(CurrentSessionFile)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(sessionID+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing current session: %w", err)
	}
	return nil
}

// ClearCurrentSession removes the current-session marker. Absence is success.
func ClearCurrentSession() error {
	path, err := infoFile(CurrentSessionFile)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing current session: %w", err)
	}
	return nil
}
