// Package cli wires the commands and lifecycle hooks of the rlm tool.
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/settings"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/telemetry"
)

const gettingStarted = `

Getting Started:
  Run 'rlm index build' to index your commit trailers; hooks then inject
  commit-history context into your coding agent. Run 'rlm enable' to add
  local-LLM analysis on top.

`

const accessibilityHelp = `
Environment Variables:
  ACCESSIBLE    Set to any value (e.g., ACCESSIBLE=1) to use simple text
                prompts instead of interactive TUI elements.
  RLM_LOG_LEVEL Set hook log verbosity (debug, info, warn, error).
`

// Version information (can be set at build time).
var (
	Version = "dev"
	Commit  = "unknown"
)

// NewRootCmd builds the rlm command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rlm",
		Short: "Commit-history memory for AI coding agents",
		Long: "rlm indexes structured commit trailers and serves them back to a " +
			"coding agent as prompt-relevant context." + gettingStarted + accessibilityHelp,
		// main.go handles error printing to avoid duplication.
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			var telemetryEnabled *bool
			enabled, replEnabled := false, false
			if cfg, err := settings.Load(); err == nil {
				telemetryEnabled = cfg.Telemetry
				enabled, replEnabled = cfg.Enabled, cfg.ReplEnabled
			}
			client := telemetry.NewClient(Version, telemetryEnabled)
			defer client.Close()
			client.TrackCommand(cmd, enabled, replEnabled)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newMemoryCmd())
	cmd.AddCommand(newConsolidateCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newEnableCmd())
	cmd.AddCommand(newDisableCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newHooksCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("rlm %s (%s)\n", Version, Commit)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
