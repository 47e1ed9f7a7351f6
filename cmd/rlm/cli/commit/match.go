package commit

import (
	"regexp"
	"strings"
)

// ScopeMatches reports whether a stored scope key matches a query pattern.
// Matching is case-insensitive and hierarchical: the pattern "auth" matches
// "auth", "auth/login", and "auth/login/flow", but not "authn". Prefix
// semantics live entirely here; stored keys are never pre-expanded.
func ScopeMatches(storedKey, pattern string) bool {
	k := strings.ToLower(storedKey)
	p := strings.ToLower(pattern)
	return k == p || strings.HasPrefix(k, p+"/")
}

// WordBoundaryMatch reports whether keyword occurs in text as a whole word,
// case-insensitively.
func WordBoundaryMatch(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}
