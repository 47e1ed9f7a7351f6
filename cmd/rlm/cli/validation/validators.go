// Package validation provides input validation for identifiers that end up in
// file paths. This package has no dependencies to avoid import cycles.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// pathSafeRegex matches alphanumeric characters, dots, underscores, and hyphens.
// Used to validate slugs that will be used in file names.
var pathSafeRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// sessionIDRegex matches the session identifier format YYYY-MM-DD/<slug>.
var sessionIDRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}/.+$`)

// ValidateSlug validates that a session slug is safe to embed in a file name
// (session-summary-<slug>.md, log files). Rejects path separators and dot-dot.
func ValidateSlug(slug string) error {
	if slug == "" {
		return errors.New("slug cannot be empty")
	}
	if slug == "." || slug == ".." || strings.Contains(slug, "..") {
		return fmt.Errorf("invalid slug %q: relative path component", slug)
	}
	if !pathSafeRegex.MatchString(slug) {
		return fmt.Errorf("invalid slug %q: must be alphanumeric with dots/underscores/hyphens only", slug)
	}
	return nil
}

// ValidateSessionID validates the YYYY-MM-DD/<slug> session identifier format
// and checks that the slug portion is path-safe.
func ValidateSessionID(id string) error {
	if id == "" {
		return errors.New("session ID cannot be empty")
	}
	if !sessionIDRegex.MatchString(id) {
		return fmt.Errorf("invalid session ID %q: expected YYYY-MM-DD/<slug>", id)
	}
	slug := id[strings.Index(id, "/")+1:]
	return ValidateSlug(slug)
}
