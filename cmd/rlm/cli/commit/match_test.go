package commit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeMatches(t *testing.T) {
	tests := []struct {
		storedKey string
		pattern   string
		want      bool
	}{
		{"auth", "auth", true},
		{"auth/login", "auth", true},
		{"auth/login/flow", "auth", true},
		{"authn", "auth", false},
		{"auth", "auth/login", false},
		{"AUTH/Login", "auth", true},
		{"auth/login", "AUTH/LOGIN", true},
		{"cache", "auth", false},
		{"auth/login", "login", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScopeMatches(tt.storedKey, tt.pattern),
			"scopeMatches(%q, %q)", tt.storedKey, tt.pattern)
	}
}

func TestWordBoundaryMatch(t *testing.T) {
	tests := []struct {
		text    string
		keyword string
		want    bool
	}{
		{"Redis sentinel", "Redis", true},
		{"Redis sentinel", "redis", true},
		{"Rediscovered", "redis", false},
		{"use redis-cluster", "redis", true},
		{"plain text", "redis", false},
		{"anything", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WordBoundaryMatch(tt.text, tt.keyword),
			"wordBoundaryMatch(%q, %q)", tt.text, tt.keyword)
	}
}
