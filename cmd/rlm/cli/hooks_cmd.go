package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/logging"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/paths"
)

// hookContext holds common state for hook logging.
type hookContext struct {
	hookName string
	ctx      context.Context
	start    time.Time
}

func newHookContext(ctx context.Context, hookName string) *hookContext {
	return &hookContext{
		hookName: hookName,
		start:    time.Now(),
		ctx:      logging.WithHook(logging.WithComponent(ctx, "hooks"), hookName),
	}
}

// initHookLogging initializes session-scoped logging for a hook invocation.
// Returns a cleanup function to defer. Logging failures never surface.
func initHookLogging() func() {
	sessionID, err := paths.ReadCurrentSession()
	if err != nil || sessionID == "" {
		return func() {}
	}
	if err := logging.Init(sessionID); err != nil {
		return func() {}
	}
	return logging.Close
}

var hookLogCleanup func()

func newHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "hooks",
		Short:  "Lifecycle hook handlers",
		Long:   "Commands invoked by the host agent's hook channel. Not for direct use.",
		Hidden: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			hookLogCleanup = initHookLogging()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if hookLogCleanup != nil {
				hookLogCleanup()
			}
		},
	}

	cmd.AddCommand(newHookPromptSubmitCmd())
	cmd.AddCommand(newHookPostToolCmd())
	cmd.AddCommand(newHookSessionStopCmd())
	return cmd
}

func newHookPromptSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt-submit",
		Short: "Handle the prompt-submit lifecycle event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHookSilently(cmd.Context(), "prompt-submit", handlePromptSubmit)
		},
	}
}

func newHookPostToolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post-tool",
		Short: "Handle the post-tool lifecycle event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHookSilently(cmd.Context(), "post-tool", handlePostTool)
		},
	}
}

func newHookSessionStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session-stop",
		Short: "Handle the session-stop lifecycle event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHookSilently(cmd.Context(), "session-stop", handleSessionStop)
		},
	}
}
