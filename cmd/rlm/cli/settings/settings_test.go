package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/jsonutil"
)

func TestLoadFrom_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "rlm-config.json"))
	require.NoError(t, err)

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.ReplEnabled)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, DefaultTimeoutMs, cfg.TimeoutMs)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, DefaultReplMaxIterations, cfg.ReplMaxIterations)
	assert.Equal(t, DefaultReplMaxLlmCalls, cfg.ReplMaxLlmCalls)
	assert.Equal(t, DefaultReplTimeoutBudgetMs, cfg.ReplTimeoutBudgetMs)
	assert.Equal(t, DefaultReplMaxOutputTokens, cfg.ReplMaxOutputTokens)
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rlm-config.json")
	require.NoError(t, jsonutil.WriteFileAtomic(path, []byte(`{"enabled": true, "model": "qwen2.5-coder"}`), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "qwen2.5-coder", cfg.Model)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, DefaultReplTimeoutBudgetMs, cfg.ReplTimeoutBudgetMs)
}

func TestLoadFrom_UnknownFieldsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rlm-config.json")
	require.NoError(t, jsonutil.WriteFileAtomic(path, []byte(`{"enabled": true, "future_knob": 7}`), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
}

func TestLoadFrom_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rlm-config.json")
	require.NoError(t, jsonutil.WriteFileAtomic(path, []byte(`{nope`), 0o600))

	_, err := LoadFrom(path)
	require.Error(t, err)
}

func TestIsTelemetryEnabled(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.IsTelemetryEnabled())

	yes := true
	cfg.Telemetry = &yes
	assert.True(t, cfg.IsTelemetryEnabled())

	no := false
	cfg.Telemetry = &no
	assert.False(t, cfg.IsTelemetryEnabled())
}
