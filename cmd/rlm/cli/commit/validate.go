package commit

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const headerMaxLength = 72

// typesWithoutBody lists commit types for which an empty body is acceptable.
var typesWithoutBody = map[string]bool{"chore": true, "ci": true, "build": true}

var sessionFormatRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}/.+$`)

// Validate applies the commit-format rules to a raw commit message and
// returns diagnostics. It never fails; an unparseable message simply
// accumulates errors.
func Validate(message string) []Diagnostic {
	var diags []Diagnostic
	errf := func(rule, format string, args ...any) {
		diags = append(diags, Diagnostic{SeverityError, rule, fmt.Sprintf(format, args...)})
	}
	warnf := func(rule, format string, args ...any) {
		diags = append(diags, Diagnostic{SeverityWarning, rule, fmt.Sprintf(format, args...)})
	}

	header, rest, _ := strings.Cut(message, "\n")

	if len(header) > headerMaxLength {
		errf("header-max-length", "header is %d chars, max %d", len(header), headerMaxLength)
	}

	m := headerRegex.FindStringSubmatch(header)
	if m == nil {
		errf("header-format", "header must match type(scope)!: subject with type in {%s}", strings.Join(CommitTypes, ", "))
	} else {
		subject := m[5]
		if strings.HasSuffix(subject, ".") {
			warnf("subject-trailing-period", "subject should not end with a period")
		}
		if first, _, _ := strings.Cut(subject, " "); len(first) > 3 &&
			(strings.HasSuffix(first, "ed") || strings.HasSuffix(first, "ing")) {
			warnf("subject-imperative-mood", "subject should start with an imperative verb, got %q", first)
		}
	}

	body, trailers := SplitBodyTrailers(strings.TrimPrefix(rest, "\n"))

	if strings.TrimSpace(body) == "" && m != nil && !typesWithoutBody[m[1]] {
		warnf("body-required", "commit type %q should carry a body explaining the change", m[1])
	}

	var intents, scopes []string
	for _, t := range trailers {
		value := strings.TrimSpace(t.Value)
		switch strings.ToLower(t.Key) {
		case "intent":
			intents = append(intents, value)
		case "scope":
			scopes = append(scopes, splitList(value)...)
		case "session":
			if !sessionFormatRegex.MatchString(value) {
				warnf("session-format", "session %q should match YYYY-MM-DD/slug", value)
			}
		case "context":
			var ctx map[string]any
			if err := json.Unmarshal([]byte(value), &ctx); err != nil {
				errf("context-invalid-json", "context trailer is not valid JSON: %v", err)
			}
		}
	}

	switch {
	case len(intents) == 0:
		errf("intent-required", "exactly one Intent trailer is required")
	case len(intents) > 1:
		errf("intent-multiple", "found %d Intent trailers, want exactly one", len(intents))
	default:
		if !ValidIntent(intents[0]) {
			errf("intent-invalid", "intent %q is not in the controlled vocabulary", intents[0])
		}
	}

	if len(scopes) == 0 {
		errf("scope-required", "at least one Scope trailer is required")
	} else {
		if len(scopes) > 3 {
			warnf("scope-max-entries", "found %d scope entries, keep it to 3 or fewer", len(scopes))
		}
		for _, s := range scopes {
			if !strings.Contains(s, "/") {
				warnf("scope-format", "scope %q should be hierarchical (domain/module)", s)
			}
		}
	}

	return diags
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
