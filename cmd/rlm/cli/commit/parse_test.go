package commit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(subject, rest string) string {
	return "Hash: abc123\nDate: 2026-01-15T10:00:00+01:00\nSubject: " + subject + "\n" + rest
}

func TestParseRecord_TypedTrailers(t *testing.T) {
	sc, err := ParseRecord(record("feat(api): add webhook retries",
		"Retries with backoff.\n\nIntent: enable-capability\nScope: api/webhooks, api/queue\nDecided-Against: synchronous delivery\nSession: 2026-01-15/webhooks\nRefs: #42, #43\nContext: {\"attempts\": 3}\nBreaking: retry header renamed\n"))
	require.NoError(t, err)

	assert.Equal(t, "abc123", sc.Hash)
	assert.Equal(t, "2026-01-15T10:00:00+01:00", sc.Date)
	assert.Equal(t, "feat", sc.Type)
	assert.Equal(t, "api", sc.HeaderScope)
	assert.Equal(t, "add webhook retries", sc.Subject)
	assert.Equal(t, "Retries with backoff.", sc.Body)
	assert.Equal(t, IntentEnableCapability, sc.Intent)
	assert.Equal(t, []string{"api/webhooks", "api/queue"}, sc.Scope)
	assert.Equal(t, []string{"synchronous delivery"}, sc.DecidedAgainst)
	assert.Equal(t, "2026-01-15/webhooks", sc.Session)
	assert.Equal(t, []string{"#42", "#43"}, sc.Refs)
	assert.Equal(t, map[string]any{"attempts": float64(3)}, sc.Context)
	assert.Equal(t, "retry header renamed", sc.Breaking)
}

func TestParseRecord_BodyColonLineIsNotATrailer(t *testing.T) {
	// A body line shaped like a trailer must stay in the body; detection is
	// gated on the known-keys allow-list.
	sc, err := ParseRecord(record("feat(api): add webhook config",
		"Configure via WEBHOOK_URL: https://example.com\n\nIntent: enable-capability\nScope: api/webhooks\n"))
	require.NoError(t, err)

	assert.Contains(t, sc.Body, "WEBHOOK_URL: https://example.com")
	assert.Equal(t, IntentEnableCapability, sc.Intent)
	assert.Equal(t, []string{"api/webhooks"}, sc.Scope)
}

func TestParseRecord_BlankLineBeforeCoAuthoredBy(t *testing.T) {
	// Structured trailers, one blank, then Co-Authored-By stays one block.
	sc, err := ParseRecord(record("fix: stop loop",
		"Body text.\n\nIntent: fix-defect\nScope: core/loop\n\nCo-Authored-By: Pair <pair@example.com>\n"))
	require.NoError(t, err)

	assert.Equal(t, "Body text.", sc.Body)
	assert.Equal(t, IntentFixDefect, sc.Intent)
	assert.Equal(t, []string{"core/loop"}, sc.Scope)
}

func TestParseRecord_TrailersGluedToBodyAreBody(t *testing.T) {
	sc, err := ParseRecord(record("fix: stop loop",
		"Body text directly followed by\nIntent: fix-defect\nScope: core/loop\n"))
	require.NoError(t, err)

	assert.Empty(t, sc.Intent)
	assert.Empty(t, sc.Scope)
	assert.Contains(t, sc.Body, "Intent: fix-defect")
}

func TestParseRecord_InvalidIntentDropped(t *testing.T) {
	sc, err := ParseRecord(record("fix: stop loop",
		"Body.\n\nIntent: make-it-better\nScope: core\n"))
	require.NoError(t, err)

	assert.Empty(t, sc.Intent)
	assert.Equal(t, []string{"core"}, sc.Scope)
}

func TestParseRecord_InvalidContextIsNil(t *testing.T) {
	sc, err := ParseRecord(record("fix: stop loop",
		"Body.\n\nIntent: fix-defect\nScope: core\nContext: {not json\n"))
	require.NoError(t, err)
	assert.Nil(t, sc.Context)
}

func TestParseRecord_MissingFields(t *testing.T) {
	_, err := ParseRecord("Hash: abc\nDate: 2026-01-01T00:00:00Z\nno subject here\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRequiredFields))
}

func TestParseRecord_NonConventionalSubject(t *testing.T) {
	_, err := ParseRecord(record("updated some stuff", "Body.\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonConventionalSubject))
}

func TestSplitRecords(t *testing.T) {
	out := RecordSeparator + "\n" + "Hash: a\nDate: d\nSubject: fix: one\nbody\n" +
		RecordSeparator + "\n" + "Hash: b\nDate: d\nSubject: fix: two\n"
	records := SplitRecords(out)
	require.Len(t, records, 2)
	assert.Contains(t, records[0], "Hash: a")
	assert.Contains(t, records[1], "Hash: b")
}

func TestRoundTrip(t *testing.T) {
	original := &StructuredCommit{
		Hash:           "abc123",
		Date:           "2026-01-15T10:00:00+01:00",
		Type:           "refactor",
		HeaderScope:    "auth",
		Subject:        "extract token store",
		Body:           "Move token handling out of the handler.",
		Intent:         IntentRestructure,
		Scope:          []string{"auth/tokens", "auth/session"},
		DecidedAgainst: []string{"keeping tokens in handler state"},
		Session:        "2026-01-15/token-store",
		Refs:           []string{"#99"},
		Context:        map[string]any{"files": float64(4)},
		Breaking:       "token store constructor signature",
	}

	parsed, err := ParseRecord(FormatRecord(original))
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestSplitBodyTrailers_OnlyTrailers(t *testing.T) {
	body, trailers := SplitBodyTrailers("Intent: explore\nScope: lab/ideas\n")
	assert.Empty(t, body)
	require.Len(t, trailers, 2)
	assert.Equal(t, "Intent", trailers[0].Key)
	assert.Equal(t, "explore", trailers[0].Value)
}
