// Package gitx provides the repository access the tool needs: HEAD and branch
// resolution through go-git, and git log through a subprocess using a fixed
// record format.
//
// go-git is used for reference resolution because it needs no subprocess and
// handles packed refs; log output goes through the git binary because the
// record format contract is defined in terms of git's own formatting.
package gitx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/commit"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/paths"
)

// RecordFormat is the git log --format value producing parseable commit
// records: separator line, Hash/Date/Subject headers, then the raw body.
const RecordFormat = commit.RecordSeparator + "%nHash: %H%nDate: %aI%nSubject: %s%n%b"

// ErrGitLogFailed wraps git log subprocess failures.
var ErrGitLogFailed = errors.New("git-log-failed")

// Repo is an open repository rooted at the working tree.
type Repo struct {
	root string
	repo *gogit.Repository
}

// Open locates the enclosing repository from the current directory.
func Open() (*Repo, error) {
	root, err := paths.RepoRoot()
	if err != nil {
		return nil, err
	}
	return OpenAt(root)
}

// OpenAt opens the repository at an explicit working-tree root.
func OpenAt(root string) (*Repo, error) {
	repo, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	return &Repo{root: root, repo: repo}, nil
}

// Root returns the working-tree root.
func (r *Repo) Root() string { return r.root }

// Head returns the hash of the current HEAD commit.
func (r *Repo) Head() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// CurrentBranch returns the short name of the checked-out branch, or an error
// in detached-HEAD state.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", errors.New("not on a branch (detached HEAD)")
	}
	return head.Name().Short(), nil
}

// Log runs git log with the given arguments and returns its stdout.
func (r *Repo) Log(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"log"}, args...)
	cmd := exec.CommandContext(ctx, "git", full...) //nolint:gosec // args are sanitized or built internally
	cmd.Dir = r.root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrGitLogFailed, strings.TrimSpace(stderr.String()), err)
	}
	return stdout.String(), nil
}

// LogRecords returns the last n commits in the parseable record format.
// n <= 0 means no limit.
func (r *Repo) LogRecords(ctx context.Context, n int) (string, error) {
	args := []string{}
	if n > 0 {
		args = append(args, "-"+strconv.Itoa(n))
	}
	args = append(args, "--format="+RecordFormat)
	return r.Log(ctx, args...)
}

// LogGrep returns commits whose message matches pattern, in record format.
// Used as the live fallback when the persisted index is stale.
func (r *Repo) LogGrep(ctx context.Context, pattern string, n int) (string, error) {
	if n <= 0 {
		n = 20
	}
	return r.Log(ctx, "-"+strconv.Itoa(n), "--grep="+pattern, "--format="+RecordFormat)
}
