package sandbox

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/commit"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/index"
)

func testEnv() Env {
	ix := index.New("head0")
	ix.Add(&commit.StructuredCommit{
		Hash: "aaa", Date: "2026-01-03T10:00:00Z", Subject: "fix login",
		Intent: commit.IntentFixDefect, Scope: []string{"auth/login"},
	})
	ix.Add(&commit.StructuredCommit{
		Hash: "ccc", Date: "2026-01-01T10:00:00Z", Subject: "add auth",
		Intent: commit.IntentEnableCapability, Scope: []string{"auth"},
	})
	return Env{Index: ix, ScopeKeys: ix.ScopeKeys()}
}

func newTestSandbox(t *testing.T, handlers Handlers, opts Options) *Sandbox {
	t.Helper()
	s := New(testEnv(), handlers, opts)
	t.Cleanup(s.Terminate)
	return s
}

func TestExecute_Done(t *testing.T) {
	s := newTestSandbox(t, Handlers{}, Options{})

	out, err := s.Execute(context.Background(), "done('The answer is 42')")
	require.NoError(t, err)

	assert.True(t, out.Done)
	require.NotNil(t, out.DoneAnswer)
	assert.Equal(t, "The answer is 42", *out.DoneAnswer)
	assert.Empty(t, out.Error)
}

func TestExecute_SyntaxError(t *testing.T) {
	s := newTestSandbox(t, Handlers{}, Options{})

	out, err := s.Execute(context.Background(), "const x = {;")
	require.NoError(t, err, "execution errors are data, not failures")

	assert.NotEmpty(t, out.Error)
	assert.False(t, out.Done)
	assert.Nil(t, out.DoneAnswer)
}

func TestExecute_ThrownError(t *testing.T) {
	s := newTestSandbox(t, Handlers{}, Options{})

	out, err := s.Execute(context.Background(), "throw new Error('boom')")
	require.NoError(t, err)
	assert.Contains(t, out.Error, "boom")
}

func TestExecute_ConsoleLog(t *testing.T) {
	s := newTestSandbox(t, Handlers{}, Options{})

	out, err := s.Execute(context.Background(), "console.log('found', 2, 'commits'); console.log({n: 1})")
	require.NoError(t, err)
	assert.Equal(t, "found 2 commits\n{\"n\":1}\n", out.Stdout)
}

func TestExecute_QueryAgainstIndex(t *testing.T) {
	s := newTestSandbox(t, Handlers{}, Options{})

	out, err := s.Execute(context.Background(),
		"const commits = query({scope: 'auth'}); done('Found ' + commits.length + ' auth commits')")
	require.NoError(t, err)

	require.NotNil(t, out.DoneAnswer)
	assert.Equal(t, "Found 2 auth commits", *out.DoneAnswer)
}

func TestExecute_EnvData(t *testing.T) {
	s := newTestSandbox(t, Handlers{}, Options{})

	out, err := s.Execute(context.Background(),
		"done(index.commitCount + '/' + scopeKeys.length + '/' + String(workingMemory))")
	require.NoError(t, err)
	require.NotNil(t, out.DoneAnswer)
	assert.Equal(t, "2/2/null", *out.DoneAnswer)
}

func TestExecute_CallLlmRoundTrip(t *testing.T) {
	s := newTestSandbox(t, Handlers{
		LLM: func(_ context.Context, messages []Message) (string, error) {
			require.Len(t, messages, 1)
			assert.Equal(t, "user", messages[0].Role)
			return "echo:" + messages[0].Content, nil
		},
	}, Options{})

	out, err := s.Execute(context.Background(),
		"const r = await callLlm([{role: 'user', content: 'hi'}]); done(r)")
	require.NoError(t, err)

	require.NotNil(t, out.DoneAnswer)
	assert.Equal(t, "echo:hi", *out.DoneAnswer)
	assert.Equal(t, 1, out.SubCalls)
}

func TestExecute_CallLlmFailureRejects(t *testing.T) {
	s := newTestSandbox(t, Handlers{
		LLM: func(_ context.Context, _ []Message) (string, error) {
			return "", errors.New("llm-budget-exhausted")
		},
	}, Options{})

	out, err := s.Execute(context.Background(), "await callLlm('hi')")
	require.NoError(t, err)
	assert.Contains(t, out.Error, "llm-budget-exhausted")
	assert.Equal(t, 1, out.SubCalls)
}

func TestExecute_GitLogRoundTrip(t *testing.T) {
	var gotArgs []string
	s := newTestSandbox(t, Handlers{
		GitLog: func(_ context.Context, args []string) (string, error) {
			gotArgs = args
			return "log output", nil
		},
	}, Options{})

	out, err := s.Execute(context.Background(),
		"const r = await gitLog(['--grep=Redis', '-n', 5]); done(r)")
	require.NoError(t, err)

	require.NotNil(t, out.DoneAnswer)
	assert.Equal(t, "log output", *out.DoneAnswer)
	assert.Equal(t, []string{"--grep=Redis", "-n", "5"}, gotArgs)
}

func TestExecute_StatePersistsBetweenCalls(t *testing.T) {
	s := newTestSandbox(t, Handlers{}, Options{})

	_, err := s.Execute(context.Background(), "globalThis.total = 40")
	require.NoError(t, err)

	out, err := s.Execute(context.Background(), "globalThis.total += 2; done(String(globalThis.total))")
	require.NoError(t, err)
	require.NotNil(t, out.DoneAnswer)
	assert.Equal(t, "42", *out.DoneAnswer)
}

func TestExecute_TimeoutKeepsSandboxAlive(t *testing.T) {
	s := newTestSandbox(t, Handlers{}, Options{ExecTimeout: 100 * time.Millisecond})

	_, err := s.Execute(context.Background(), "globalThis.kept = 'yes'; while (true) {}")
	require.ErrorIs(t, err, ErrExecutionTimeout)

	// State persists and the sandbox accepts the next execute.
	out, err := s.Execute(context.Background(), "done(globalThis.kept)")
	require.NoError(t, err)
	require.NotNil(t, out.DoneAnswer)
	assert.Equal(t, "yes", *out.DoneAnswer)
}

func TestExecute_AfterTerminate(t *testing.T) {
	s := New(testEnv(), Handlers{}, Options{})
	s.Terminate()
	s.Terminate() // idempotent

	_, err := s.Execute(context.Background(), "done('late')")
	require.ErrorIs(t, err, ErrTerminated)
	assert.True(t, s.Terminated())
}

func TestExecute_ReturnValue(t *testing.T) {
	s := newTestSandbox(t, Handlers{}, Options{})

	out, err := s.Execute(context.Background(), "return {count: 2}")
	require.NoError(t, err)
	assert.Equal(t, `{"count":2}`, out.ReturnValue)
	assert.False(t, out.Done)
}

func TestExecute_SubCallsResetPerExecute(t *testing.T) {
	calls := 0
	s := newTestSandbox(t, Handlers{
		LLM: func(_ context.Context, _ []Message) (string, error) {
			calls++
			return fmt.Sprintf("reply %d", calls), nil
		},
	}, Options{})

	out, err := s.Execute(context.Background(), "await callLlm('a'); await callLlm('b')")
	require.NoError(t, err)
	assert.Equal(t, 2, out.SubCalls)

	out, err = s.Execute(context.Background(), "await callLlm('c')")
	require.NoError(t, err)
	assert.Equal(t, 1, out.SubCalls)
}
