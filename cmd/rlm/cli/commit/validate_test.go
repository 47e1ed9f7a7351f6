package commit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rules(diags []Diagnostic, severity Severity) []string {
	var out []string
	for _, d := range diags {
		if d.Severity == severity {
			out = append(out, d.Rule)
		}
	}
	return out
}

func TestValidate_CleanMessage(t *testing.T) {
	diags := Validate("feat(auth): add refresh tokens\n\nRotate refresh tokens on use.\n\nIntent: enable-capability\nScope: auth/tokens\n")
	assert.Empty(t, diags)
}

func TestValidate_ScopeWarnings(t *testing.T) {
	diags := Validate("feat: widen coverage\n\nSome body.\n\nIntent: improve-quality\nScope: auth, backend, orders/pricing, billing\n")

	warnings := rules(diags, SeverityWarning)
	assert.Contains(t, warnings, "scope-max-entries")
	assert.Equal(t, 3, count(warnings, "scope-format"), "auth, backend, billing lack a /")
	assert.Empty(t, rules(diags, SeverityError))
}

func count(items []string, want string) int {
	n := 0
	for _, item := range items {
		if item == want {
			n++
		}
	}
	return n
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantRule string
	}{
		{
			name:     "missing intent",
			message:  "fix: stop loop\n\nBody.\n\nScope: core/loop\n",
			wantRule: "intent-required",
		},
		{
			name:     "multiple intents",
			message:  "fix: stop loop\n\nBody.\n\nIntent: fix-defect\nIntent: explore\nScope: core/loop\n",
			wantRule: "intent-multiple",
		},
		{
			name:     "invalid intent",
			message:  "fix: stop loop\n\nBody.\n\nIntent: make-nice\nScope: core/loop\n",
			wantRule: "intent-invalid",
		},
		{
			name:     "missing scope",
			message:  "fix: stop loop\n\nBody.\n\nIntent: fix-defect\n",
			wantRule: "scope-required",
		},
		{
			name:     "invalid context json",
			message:  "fix: stop loop\n\nBody.\n\nIntent: fix-defect\nScope: core/loop\nContext: {oops\n",
			wantRule: "context-invalid-json",
		},
		{
			name:     "header too long",
			message:  "fix: " + strings.Repeat("x", 80) + "\n\nBody.\n\nIntent: fix-defect\nScope: core/loop\n",
			wantRule: "header-max-length",
		},
		{
			name:     "non-conventional header",
			message:  "updated stuff\n\nBody.\n\nIntent: fix-defect\nScope: core/loop\n",
			wantRule: "header-format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := Validate(tt.message)
			assert.Contains(t, rules(diags, SeverityError), tt.wantRule)
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantRule string
	}{
		{
			name:     "trailing period",
			message:  "fix: stop loop.\n\nBody.\n\nIntent: fix-defect\nScope: core/loop\n",
			wantRule: "subject-trailing-period",
		},
		{
			name:     "past tense subject",
			message:  "fix: stopped the loop\n\nBody.\n\nIntent: fix-defect\nScope: core/loop\n",
			wantRule: "subject-imperative-mood",
		},
		{
			name:     "gerund subject",
			message:  "fix: stopping the loop\n\nBody.\n\nIntent: fix-defect\nScope: core/loop\n",
			wantRule: "subject-imperative-mood",
		},
		{
			name:     "missing body",
			message:  "fix: stop loop\n\nIntent: fix-defect\nScope: core/loop\n",
			wantRule: "body-required",
		},
		{
			name:     "bad session format",
			message:  "fix: stop loop\n\nBody.\n\nIntent: fix-defect\nScope: core/loop\nSession: loop-work\n",
			wantRule: "session-format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := Validate(tt.message)
			assert.Contains(t, rules(diags, SeverityWarning), tt.wantRule)
		})
	}
}

func TestValidate_ChoreWithoutBodyIsFine(t *testing.T) {
	diags := Validate("chore: bump deps\n\nIntent: configure-infra\nScope: build/deps\n")
	assert.NotContains(t, rules(diags, SeverityWarning), "body-required")
}

func TestValidate_GluedTrailersProduceRequiredErrors(t *testing.T) {
	// No blank line between body and trailers: they read as body, so the
	// required-trailer rules fire.
	diags := Validate("fix: stop loop\n\nBody text\nIntent: fix-defect\nScope: core/loop\n")
	errs := rules(diags, SeverityError)
	assert.Contains(t, errs, "intent-required")
	assert.Contains(t, errs, "scope-required")
	require.NotEmpty(t, errs)
}
