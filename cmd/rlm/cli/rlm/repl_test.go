package rlm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/commit"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/index"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/rlm/sandbox"
)

func replEnv() sandbox.Env {
	ix := index.New("head0")
	ix.Add(&commit.StructuredCommit{
		Hash: "aaa", Date: "2026-01-03T10:00:00Z", Subject: "fix login",
		Intent: commit.IntentFixDefect, Scope: []string{"auth/login"},
	})
	ix.Add(&commit.StructuredCommit{
		Hash: "ccc", Date: "2026-01-01T10:00:00Z", Subject: "add auth",
		Intent: commit.IntentEnableCapability, Scope: []string{"auth"},
	})
	return sandbox.Env{Index: ix, ScopeKeys: ix.ScopeKeys()}
}

func testReplConfig() ReplConfig {
	return ReplConfig{MaxIterations: 6, MaxLlmCalls: 10, TimeoutBudgetMs: 15000}
}

// scriptedLLM returns canned responses in order, repeating the last one.
func scriptedLLM(responses ...string) LLMFunc {
	i := 0
	return func(_ context.Context, _ []sandbox.Message) (string, error) {
		if i >= len(responses) {
			return responses[len(responses)-1], nil
		}
		r := responses[i]
		i++
		return r, nil
	}
}

func noGitLog(_ context.Context, _ []string) (string, error) {
	return "", errors.New("not used")
}

func TestRun_SingleIterationDone(t *testing.T) {
	llm := scriptedLLM("```js\nconst commits = query({scope: 'auth'});\ndone('Found ' + commits.length + ' auth commits');\n```")

	result, err := Run(context.Background(), testReplConfig(), "what do we know about auth?", replEnv(), llm, noGitLog)
	require.NoError(t, err)

	assert.Equal(t, "Found 2 auth commits", result.Answer)
	assert.Equal(t, 1, result.Iterations)
	assert.GreaterOrEqual(t, result.LlmCalls, 1)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, 0, result.Trace[0].SubCalls)
}

func TestRun_PlainTextIsFinalAnswer(t *testing.T) {
	llm := scriptedLLM("The auth module was reworked in January.")

	result, err := Run(context.Background(), testReplConfig(), "auth history?", replEnv(), llm, noGitLog)
	require.NoError(t, err)

	assert.Equal(t, "The auth module was reworked in January.", result.Answer)
	assert.Equal(t, 1, result.Iterations)
	assert.Empty(t, result.Trace)
}

func TestRun_ExecutionErrorFedBack(t *testing.T) {
	llm := scriptedLLM(
		"```js\nconst x = {;\n```",
		"```js\ndone('recovered')\n```",
	)

	result, err := Run(context.Background(), testReplConfig(), "anything", replEnv(), llm, noGitLog)
	require.NoError(t, err)

	assert.Equal(t, "recovered", result.Answer)
	assert.Equal(t, 2, result.Iterations)
	require.Len(t, result.Trace, 2)
	assert.NotEmpty(t, result.Trace[0].Result, "first trace entry carries the error")
}

func TestRun_IterationBudgetForcesTextAnswer(t *testing.T) {
	// The model never calls done; after maxIterations the loop forces one
	// final plain-text turn.
	calls := 0
	llm := func(_ context.Context, messages []sandbox.Message) (string, error) {
		calls++
		last := messages[len(messages)-1]
		if last.Role == "user" && last.Content == "Iteration budget exhausted. Provide your best answer as plain text (no code block)." {
			return "best effort answer", nil
		}
		return "```js\nconsole.log('still looking')\n```", nil
	}

	rc := testReplConfig()
	rc.MaxIterations = 3

	result, err := Run(context.Background(), rc, "anything", replEnv(), llm, noGitLog)
	require.NoError(t, err)

	assert.Equal(t, "best effort answer", result.Answer)
	assert.Equal(t, rc.MaxIterations+1, result.Iterations)
	assert.Len(t, result.Trace, rc.MaxIterations)
	assert.Equal(t, rc.MaxIterations+1, calls)
}

func TestRun_LlmCallBudget(t *testing.T) {
	// Every iteration burns one top-level call; the budget caps the total
	// including the forced final turn.
	llm := scriptedLLM("```js\nconsole.log('looking')\n```")

	rc := testReplConfig()
	rc.MaxIterations = 10
	rc.MaxLlmCalls = 3

	result, err := Run(context.Background(), rc, "anything", replEnv(), llm, noGitLog)
	require.NoError(t, err)

	assert.LessOrEqual(t, result.LlmCalls, rc.MaxLlmCalls+1)
	assert.Equal(t, "looking\n", result.Answer, "degraded answer is the last trace output")
}

func TestRun_SubCallBudgetExhaustion(t *testing.T) {
	// Sandbox sub-calls share the budget; once it is spent, callLlm rejects
	// and the model can still recover via done().
	llm := scriptedLLM(
		"```js\ntry { await callLlm('one'); await callLlm('two'); await callLlm('three'); } catch (e) { done('budget hit: ' + e) }\n```",
	)

	rc := testReplConfig()
	rc.MaxLlmCalls = 3 // one top-level + two sub-calls

	result, err := Run(context.Background(), rc, "anything", replEnv(), llm, noGitLog)
	require.NoError(t, err)

	assert.Contains(t, result.Answer, "budget hit")
	assert.Contains(t, result.Answer, "llm-budget-exhausted")
	require.Len(t, result.Trace, 1)
	assert.Equal(t, 3, result.Trace[0].SubCalls)
}

func TestRun_LlmFailurePropagates(t *testing.T) {
	llm := func(_ context.Context, _ []sandbox.Message) (string, error) {
		return "", errors.New("connection refused")
	}

	_, err := Run(context.Background(), testReplConfig(), "anything", replEnv(), llm, noGitLog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRun_GitLogEffectIsSanitized(t *testing.T) {
	var got []string
	gitLog := func(_ context.Context, args []string) (string, error) {
		got = args
		return "ok", nil
	}
	llm := scriptedLLM(
		"```js\ntry { await gitLog(['--exec=sh']) } catch (e) { globalThis.err = String(e) }\nconst out = await gitLog(['--grep=auth', '-n', 99]);\ndone(globalThis.err + '|' + out)\n```",
	)

	result, err := Run(context.Background(), testReplConfig(), "anything", replEnv(), llm, gitLog)
	require.NoError(t, err)

	assert.Contains(t, result.Answer, "disallowed-flag")
	assert.Contains(t, result.Answer, "|ok")
	assert.Equal(t, []string{"--grep=auth", "-n", "50"}, got, "-n capped at 50")
}
