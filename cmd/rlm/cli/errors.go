package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/commit"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/gitx"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/rlm"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/rlm/sandbox"
)

// SilentError marks an error that was already presented to the user; main.go
// skips printing it again.
type SilentError struct {
	err error
}

// NewSilentError wraps an error as already-printed.
func NewSilentError(err error) *SilentError {
	return &SilentError{err: err}
}

func (e *SilentError) Error() string { return e.err.Error() }
func (e *SilentError) Unwrap() error { return e.err }

// taggedErrors maps sentinel errors to the tag shown in CLI error output.
var taggedErrors = []struct {
	err error
	tag string
}{
	{commit.ErrMissingRequiredFields, "missing-required-fields"},
	{commit.ErrNonConventionalSubject, "non-conventional-subject"},
	{gitx.ErrGitLogFailed, "git-log-failed"},
	{gitx.ErrDisallowedFlag, "disallowed-flag"},
	{gitx.ErrInvalidN, "invalid-n"},
	{gitx.ErrDangerousCharacter, "dangerous-character"},
	{sandbox.ErrExecutionTimeout, "sandbox-execution-timed-out"},
	{sandbox.ErrTerminated, "sandbox-terminated"},
	{rlm.ErrLLMBudgetExhausted, "llm-budget-exhausted"},
}

func errTag(err error) string {
	for _, te := range taggedErrors {
		if errors.Is(err, te.err) {
			return te.tag
		}
	}
	return "internal"
}

// printError reports a failure as "Error [tag]: message" on stderr and
// returns a SilentError for cobra.
func printError(err error) error {
	fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", errTag(err), err)
	return NewSilentError(err)
}
