// Package sessionid provides session identifier formatting and parsing.
// Session IDs have the form YYYY-MM-DD/<slug> and group one working session's
// commits with its working-memory entries.
package sessionid

import (
	"strings"
	"time"
)

// New builds a session ID for today from a slug.
func New(slug string) string {
	return time.Now().Format("2006-01-02") + "/" + slug
}

// Split returns the date and slug parts of a session ID.
// ok is false when the ID is not in YYYY-MM-DD/<slug> form.
func Split(id string) (date, slug string, ok bool) {
	i := strings.Index(id, "/")
	if i != 10 || len(id) < 12 {
		return "", "", false
	}
	date, slug = id[:i], id[i+1:]
	if date[4] != '-' || date[7] != '-' {
		return "", "", false
	}
	return date, slug, true
}

// Slug returns the slug portion of a session ID, or the whole ID when it is
// not in the expected form. The result is what file names are derived from.
func Slug(id string) string {
	if _, slug, ok := Split(id); ok {
		return slug
	}
	return id
}

// FileName returns a path-safe single-segment form of a session ID, with the
// date/slug separator flattened to a hyphen. Used for log file names.
func FileName(id string) string {
	return strings.ReplaceAll(id, "/", "-")
}
