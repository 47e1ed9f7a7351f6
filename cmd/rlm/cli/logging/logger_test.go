package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/paths"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/testutil"
)

func TestInit_WritesSessionLog(t *testing.T) {
	repoDir := testutil.ChdirRepo(t)

	require.NoError(t, Init("2026-01-15/cache-work"))
	t.Cleanup(Close)

	Info(WithComponent(t.Context(), "index"), "index built")
	Close()

	logPath := filepath.Join(repoDir, ".git", "info", paths.LogsDirName, "2026-01-15-cache-work.log")
	data, err := os.ReadFile(logPath) //nolint:gosec // test path
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &record))
	assert.Equal(t, "index built", record["msg"])
	assert.Equal(t, "index", record["component"])
	assert.Equal(t, "2026-01-15/cache-work", record["session_id"])
}

func TestInit_RejectsUnsafeSessionID(t *testing.T) {
	testutil.ChdirRepo(t)
	require.Error(t, Init("../escape"))
}

func TestLog_WithoutInitDoesNotPanic(t *testing.T) {
	Close()
	Info(t.Context(), "no logger configured")
	Debug(WithHook(t.Context(), "prompt-submit"), "still fine")
}

func TestWithContextValues(t *testing.T) {
	ctx := WithSession(WithComponent(WithHook(t.Context(), "post-tool"), "hooks"), "2026-01-15/x")
	attrs := attrsFromContext(ctx, "")
	require.Len(t, attrs, 3)

	// A globally-initialized session suppresses the context session_id.
	attrs = attrsFromContext(ctx, "2026-01-15/x")
	assert.Len(t, attrs, 2)
}
