package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/logging"
)

// HookInput is the line-delimited JSON envelope the host agent writes on the
// hook's stdin. Only the fields the handlers use are declared; the rest of
// the envelope is ignored.
type HookInput struct {
	HookEventName string `json:"hook_event_name"`
	SessionID     string `json:"session_id"`
	Prompt        string `json:"prompt"`
	ToolName      string `json:"tool_name"`
	ToolInput     struct {
		Command string `json:"command"`
	} `json:"tool_input"`
	ToolResponse struct {
		Stdout string `json:"stdout"`
	} `json:"tool_response"`
}

// parseHookInput parses the hook envelope from a reader.
func parseHookInput(r io.Reader) (*HookInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty input")
	}

	var input HookInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &input, nil
}

// runHookSilently runs a hook handler and swallows its errors: hooks must
// never interfere with the agent, so failures are logged and the process
// exits 0. Non-zero exits are reserved for CLI misuse.
func runHookSilently(ctx context.Context, name string, handler func(context.Context, *hookContext) error) error {
	hc := newHookContext(ctx, name)

	logging.Debug(hc.ctx, name+" hook invoked", slog.String("hook", name))
	err := handler(ctx, hc)
	logging.LogDuration(hc.ctx, slog.LevelDebug, name+" hook completed", hc.start,
		slog.String("hook", name),
		slog.Bool("success", err == nil),
	)
	if err != nil {
		logging.Warn(hc.ctx, name+" hook failed", slog.String("error", err.Error()))
	}
	return nil
}
