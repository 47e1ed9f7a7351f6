package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/commit"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [commit-msg-file]",
		Short: "Validate a commit message against the trailer format",
		Long: "Validates a commit message read from a file (or stdin when no file is " +
			"given). Suitable as a commit-msg git hook. Errors exit 1; warnings exit 0.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 1 {
				data, err = os.ReadFile(args[0]) //nolint:gosec // user-supplied path is the point
			} else {
				data, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return printError(fmt.Errorf("reading commit message: %w", err))
			}

			diags := commit.Validate(string(data))
			if len(diags) == 0 {
				fmt.Fprintln(os.Stderr, "✓ commit message ok")
				return nil
			}

			for _, d := range diags {
				fmt.Fprintf(os.Stderr, "%s [%s]: %s\n", d.Severity, d.Rule, d.Message)
			}
			if commit.HasErrors(diags) {
				return NewSilentError(errors.New("commit message has errors"))
			}
			return nil
		},
	}
}
