// Package signals classifies user-prompt tokens into scope hints, intent
// hints, and residual keywords for index queries.
package signals

import (
	"strings"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/commit"
)

// Signals holds the three disjoint token sets derived from one prompt.
type Signals struct {
	ScopeHints  []string
	IntentHints []commit.Intent
	Keywords    []string
}

// Extract tokenizes a prompt and classifies each token. A token matching a
// stored scope key (hierarchically) becomes a scope hint; a token in the
// intent-synonym table contributes its intent; both matches consume the
// token. Remaining non-stop-word tokens become keywords. All three sets are
// de-duplicated preserving first-seen order.
func Extract(prompt string, scopeKeys []string) Signals {
	sig := Signals{}
	seenScope := map[string]bool{}
	seenIntent := map[commit.Intent]bool{}
	seenKeyword := map[string]bool{}

	for _, token := range Tokenize(prompt) {
		consumed := false

		for _, key := range scopeKeys {
			if commit.ScopeMatches(key, token) {
				if !seenScope[token] {
					seenScope[token] = true
					sig.ScopeHints = append(sig.ScopeHints, token)
				}
				consumed = true
				break
			}
		}

		if intent, ok := intentSynonyms[token]; ok {
			if !seenIntent[intent] {
				seenIntent[intent] = true
				sig.IntentHints = append(sig.IntentHints, intent)
			}
			consumed = true
		}

		if consumed || stopWords[token] {
			continue
		}
		if !seenKeyword[token] {
			seenKeyword[token] = true
			sig.Keywords = append(sig.Keywords, token)
		}
	}
	return sig
}

// Tokenize lowercases the prompt, keeps [a-z0-9/_-], splits on whitespace,
// and drops tokens of length <= 1.
func Tokenize(prompt string) []string {
	lowered := strings.ToLower(prompt)
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == '/', r == '_', r == '-':
			return r
		default:
			return ' '
		}
	}, lowered)

	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) > 1 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
