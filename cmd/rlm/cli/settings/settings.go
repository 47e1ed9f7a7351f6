// Package settings provides configuration loading for the rlm tool.
// Configuration lives at <git-dir>/info/rlm-config.json; a missing file
// yields defaults with everything disabled.
package settings

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/jsonutil"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/paths"
)

// CurrentVersion is the config file schema version.
const CurrentVersion = 1

// Defaults for the local LLM and the REPL budgets.
const (
	DefaultEndpoint            = "http://localhost:11434"
	DefaultTimeoutMs           = 5000
	DefaultMaxTokens           = 256
	DefaultReplMaxIterations   = 6
	DefaultReplMaxLlmCalls     = 10
	DefaultReplTimeoutBudgetMs = 15000
	DefaultReplMaxOutputTokens = 512
)

// Settings represents the rlm-config.json configuration.
type Settings struct {
	Version int `json:"version"`

	// Enabled gates all LLM involvement. Hooks still serve index lookups
	// when disabled.
	Enabled bool `json:"enabled"`

	// Endpoint is the base URL of the local LLM server.
	Endpoint string `json:"endpoint"`
	Model    string `json:"model"`

	// TimeoutMs and MaxTokens bound a single LLM call.
	TimeoutMs int `json:"timeoutMs"`
	MaxTokens int `json:"maxTokens"`

	// ReplEnabled turns on the RLM REPL loop in the prompt-submit hook.
	ReplEnabled         bool `json:"replEnabled"`
	ReplMaxIterations   int  `json:"replMaxIterations"`
	ReplMaxLlmCalls     int  `json:"replMaxLlmCalls"`
	ReplTimeoutBudgetMs int  `json:"replTimeoutBudgetMs"`
	ReplMaxOutputTokens int  `json:"replMaxOutputTokens"`

	// Telemetry controls anonymous usage analytics.
	// nil = not configured (disabled), true = opted in, false = opted out.
	Telemetry *bool `json:"telemetry,omitempty"`
}

// Default returns the settings used when no config file exists.
func Default() *Settings {
	return &Settings{
		Version:             CurrentVersion,
		Enabled:             false,
		Endpoint:            DefaultEndpoint,
		TimeoutMs:           DefaultTimeoutMs,
		MaxTokens:           DefaultMaxTokens,
		ReplEnabled:         false,
		ReplMaxIterations:   DefaultReplMaxIterations,
		ReplMaxLlmCalls:     DefaultReplMaxLlmCalls,
		ReplTimeoutBudgetMs: DefaultReplTimeoutBudgetMs,
		ReplMaxOutputTokens: DefaultReplMaxOutputTokens,
	}
}

// Load reads the configuration from <git-dir>/info/rlm-config.json.
// A missing file yields Default(); zero-valued numeric fields are replaced by
// their defaults so a hand-edited partial file stays usable.
func Load() (*Settings, error) {
	path, err := paths.ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from an explicit path.
func LoadFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from paths package or caller
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	s := Default()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyDefaults(s)
	return s, nil
}

// Save writes the configuration atomically as pretty-printed JSON.
func Save(s *Settings) error {
	path, err := paths.ConfigPath()
	if err != nil {
		return err
	}
	s.Version = CurrentVersion
	if err := jsonutil.MarshalIndentToFile(path, s, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func applyDefaults(s *Settings) {
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
	if s.Endpoint == "" {
		s.Endpoint = DefaultEndpoint
	}
	if s.TimeoutMs <= 0 {
		s.TimeoutMs = DefaultTimeoutMs
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = DefaultMaxTokens
	}
	if s.ReplMaxIterations <= 0 {
		s.ReplMaxIterations = DefaultReplMaxIterations
	}
	if s.ReplMaxLlmCalls <= 0 {
		s.ReplMaxLlmCalls = DefaultReplMaxLlmCalls
	}
	if s.ReplTimeoutBudgetMs <= 0 {
		s.ReplTimeoutBudgetMs = DefaultReplTimeoutBudgetMs
	}
	if s.ReplMaxOutputTokens <= 0 {
		s.ReplMaxOutputTokens = DefaultReplMaxOutputTokens
	}
}

// IsTelemetryEnabled reports whether the user opted into telemetry.
func (s *Settings) IsTelemetryEnabled() bool {
	return s.Telemetry != nil && *s.Telemetry
}
