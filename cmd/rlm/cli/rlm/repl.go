package rlm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/gitx"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/logging"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/rlm/sandbox"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/settings"
)

// ErrLLMBudgetExhausted fails sandbox sub-calls once the call budget is
// spent; the rejection is fed back to the model like any execution error.
var ErrLLMBudgetExhausted = errors.New("llm-budget-exhausted")

// ReplConfig bounds one REPL run.
type ReplConfig struct {
	MaxIterations   int
	MaxLlmCalls     int
	TimeoutBudgetMs int
	MaxOutputTokens int
}

// ReplConfigFrom extracts the REPL budgets from settings.
func ReplConfigFrom(cfg *settings.Settings) ReplConfig {
	return ReplConfig{
		MaxIterations:   cfg.ReplMaxIterations,
		MaxLlmCalls:     cfg.ReplMaxLlmCalls,
		TimeoutBudgetMs: cfg.ReplTimeoutBudgetMs,
		MaxOutputTokens: cfg.ReplMaxOutputTokens,
	}
}

// LLMFunc is the injected LLM effect.
type LLMFunc func(ctx context.Context, messages []sandbox.Message) (string, error)

// GitLogFunc is the injected git log effect; it receives already-sanitized
// arguments.
type GitLogFunc func(ctx context.Context, args []string) (string, error)

// TraceEntry records one REPL iteration.
type TraceEntry struct {
	Iteration int
	Code      string
	Result    string
	SubCalls  int
}

// Result is the outcome of a REPL run. Run degrades instead of failing: an
// exhausted budget still produces an answer.
type Result struct {
	Answer     string
	Iterations int
	LlmCalls   int
	Trace      []TraceEntry
}

// callTracker enforces the LLM call budget across the top-level loop and
// sandbox sub-calls, which arrive on a different goroutine.
type callTracker struct {
	mu    sync.Mutex
	count int
	max   int
	llm   LLMFunc
}

func (t *callTracker) call(ctx context.Context, messages []sandbox.Message) (string, error) {
	t.mu.Lock()
	if t.count >= t.max {
		t.mu.Unlock()
		return "", ErrLLMBudgetExhausted
	}
	t.count++
	t.mu.Unlock()
	return t.llm(ctx, messages)
}

func (t *callTracker) calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Run drives the conversation between the LLM and the sandbox until the model
// calls done, the iteration budget runs out, or the wall clock expires. LLM
// transport failures propagate; sandbox execution errors and timeouts never
// do — they become feedback for the next turn. The sandbox is terminated on
// every exit path.
func Run(ctx context.Context, rc ReplConfig, prompt string, env sandbox.Env, llm LLMFunc, gitLog GitLogFunc) (*Result, error) {
	logCtx := logging.WithComponent(ctx, "repl")
	start := time.Now()
	budget := time.Duration(rc.TimeoutBudgetMs) * time.Millisecond

	tracker := &callTracker{max: rc.MaxLlmCalls, llm: llm}

	sb := sandbox.New(env, sandbox.Handlers{
		LLM: tracker.call,
		GitLog: func(ctx context.Context, args []string) (string, error) {
			clean, err := gitx.SanitizeLogArgs(args)
			if err != nil {
				return "", err
			}
			return gitLog(ctx, clean)
		},
	}, sandbox.Options{})
	defer sb.Terminate()

	conversation := []sandbox.Message{
		{Role: "system", Content: BuildSystemPrompt(env, rc)},
		{Role: "user", Content: "Task: " + prompt + "\n\nWrite JavaScript code to find relevant context in the commit history."},
	}

	result := &Result{}
	finish := func(answer string) (*Result, error) {
		result.Answer = answer
		result.LlmCalls = tracker.calls()
		logging.Debug(logCtx, "repl finished",
			slog.Int("iterations", result.Iterations),
			slog.Int("llm_calls", result.LlmCalls),
			slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return result, nil
	}

	for i := 1; i <= rc.MaxIterations; i++ {
		if time.Since(start) > budget || tracker.calls() >= rc.MaxLlmCalls {
			break
		}

		response, err := tracker.call(ctx, conversation)
		if err != nil {
			result.LlmCalls = tracker.calls()
			return nil, fmt.Errorf("llm call failed: %w", err)
		}
		result.Iterations = i

		code, ok := ExtractCodeBlock(response)
		if !ok {
			// No fenced block: the whole response is the final answer.
			return finish(response)
		}
		conversation = append(conversation, sandbox.Message{Role: "assistant", Content: response})

		output, execErr := sb.Execute(ctx, code)
		if execErr != nil {
			// Timeout or cancellation; keep the sandbox and feed it back.
			output = &sandbox.Output{Error: execErr.Error()}
		}

		traceResult := output.Stdout
		if output.Error != "" {
			traceResult = output.Error
		}
		result.Trace = append(result.Trace, TraceEntry{
			Iteration: i,
			Code:      code,
			Result:    traceResult,
			SubCalls:  output.SubCalls,
		})

		if output.Done && output.DoneAnswer != nil {
			return finish(*output.DoneAnswer)
		}

		if output.Error != "" {
			conversation = append(conversation, sandbox.Message{
				Role: "user",
				Content: fmt.Sprintf("Execution error: %s\n%s\nFix the error or call done() with your best answer.",
					output.Error, output.Stdout),
			})
			continue
		}

		stdout := output.Stdout
		if strings.TrimSpace(stdout) == "" {
			stdout = "(no output)"
		}
		conversation = append(conversation, sandbox.Message{
			Role:    "user",
			Content: "Output:\n" + stdout + "\n\nContinue analysis or call done(answer).",
		})
	}

	// Loop exhausted without done. Force a plain-text answer when budgets
	// still allow one more call; otherwise degrade to the last output.
	if time.Since(start) <= budget && tracker.calls() < rc.MaxLlmCalls {
		conversation = append(conversation, sandbox.Message{
			Role:    "user",
			Content: "Iteration budget exhausted. Provide your best answer as plain text (no code block).",
		})
		response, err := tracker.call(ctx, conversation)
		if err == nil {
			result.Iterations++
			return finish(response)
		}
		logging.Warn(logCtx, "forced final call failed", slog.String("error", err.Error()))
	}

	last := ""
	if len(result.Trace) > 0 {
		last = result.Trace[len(result.Trace)-1].Result
	}
	return finish(last)
}
