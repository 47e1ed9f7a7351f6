package commit

// Intent is a controlled-vocabulary strategic motivation for a commit.
type Intent string

// The eight recognized intents.
const (
	IntentEnableCapability Intent = "enable-capability"
	IntentFixDefect        Intent = "fix-defect"
	IntentImproveQuality   Intent = "improve-quality"
	IntentRestructure      Intent = "restructure"
	IntentConfigureInfra   Intent = "configure-infra"
	IntentDocument         Intent = "document"
	IntentExplore          Intent = "explore"
	IntentResolveBlocker   Intent = "resolve-blocker"
)

// Intents lists the controlled vocabulary in canonical order.
var Intents = []Intent{
	IntentEnableCapability,
	IntentFixDefect,
	IntentImproveQuality,
	IntentRestructure,
	IntentConfigureInfra,
	IntentDocument,
	IntentExplore,
	IntentResolveBlocker,
}

var intentSet = func() map[Intent]bool {
	m := make(map[Intent]bool, len(Intents))
	for _, i := range Intents {
		m[i] = true
	}
	return m
}()

// ValidIntent reports whether s is one of the eight recognized intents.
func ValidIntent(s string) bool {
	return intentSet[Intent(s)]
}

// CommitTypes is the closed set of conventional-commit types.
var CommitTypes = []string{
	"feat", "fix", "refactor", "perf", "docs", "test", "build", "ci", "chore", "revert",
}

// knownTrailerKeys is the allow-list gating trailer detection. A Key: value
// line only counts as a trailer when its lowercased key is in this set;
// recognizing trailers by shape alone would swallow body lines like
// "WEBHOOK_URL: https://...".
var knownTrailerKeys = map[string]bool{
	"intent":          true,
	"scope":           true,
	"decided-against": true,
	"session":         true,
	"refs":            true,
	"context":         true,
	"breaking":        true,
	"signed-off-by":   true,
	"co-authored-by":  true,
}
