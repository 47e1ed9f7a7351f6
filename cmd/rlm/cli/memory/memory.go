// Package memory implements the per-session working-memory log and its
// consolidation into session summaries and commit-trailer suggestions.
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/jsonutil"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/paths"
	"github.com/srdjan/rlm-git-commits/redact"
)

// CurrentVersion is the persisted working-memory schema version.
const CurrentVersion = 1

// Tag classifies a working-memory entry.
type Tag string

// The recognized entry tags.
const (
	TagFinding    Tag = "finding"
	TagHypothesis Tag = "hypothesis"
	TagDecision   Tag = "decision"
	TagContext    Tag = "context"
	TagTodo       Tag = "todo"
)

// Tags lists the recognized tags.
var Tags = []Tag{TagFinding, TagHypothesis, TagDecision, TagContext, TagTodo}

// ValidTag reports whether s is a recognized entry tag.
func ValidTag(s string) bool {
	for _, t := range Tags {
		if Tag(s) == t {
			return true
		}
	}
	return false
}

// Entry is one tagged working-memory item.
type Entry struct {
	Timestamp string   `json:"timestamp"`
	Tag       Tag      `json:"tag"`
	Scope     []string `json:"scope,omitempty"`
	Text      string   `json:"text"`
	Source    string   `json:"source,omitempty"`
}

// WorkingMemory is the per-session scratch file.
type WorkingMemory struct {
	Version   int     `json:"version"`
	SessionID string  `json:"sessionId"`
	Created   string  `json:"created"`
	Updated   string  `json:"updated"`
	Entries   []Entry `json:"entries"`
}

// ErrInvalidTag rejects entries with an unrecognized tag.
var ErrInvalidTag = errors.New("invalid-tag")

// Load reads working memory for the given session. A missing file, or a file
// belonging to a different session, is reported as absent (nil, nil) so stale
// state from a prior session never leaks.
func Load(sessionID string) (*WorkingMemory, error) {
	path, err := paths.WorkingMemoryPath()
	if err != nil {
		return nil, err
	}
	return loadFrom(path, sessionID)
}

func loadFrom(path, sessionID string) (*WorkingMemory, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from paths package
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading working memory: %w", err)
	}

	var wm WorkingMemory
	if err := json.Unmarshal(data, &wm); err != nil {
		return nil, fmt.Errorf("parsing working memory: %w", err)
	}
	if wm.SessionID != sessionID {
		return nil, nil
	}
	return &wm, nil
}

// AddEntry appends one entry, creating the file on first write. The entry
// text and source are redacted before they reach disk. The whole file is
// replaced atomically; the process is single-writer per session.
func AddEntry(sessionID string, e Entry) error {
	if !ValidTag(string(e.Tag)) {
		return fmt.Errorf("%w: %q", ErrInvalidTag, e.Tag)
	}

	path, err := paths.WorkingMemoryPath()
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	wm, err := loadFrom(path, sessionID)
	if err != nil {
		return err
	}
	if wm == nil {
		wm = &WorkingMemory{
			Version:   CurrentVersion,
			SessionID: sessionID,
			Created:   now,
		}
	}

	e.Timestamp = now
	e.Text = redact.String(e.Text)
	e.Source = redact.String(e.Source)
	wm.Entries = append(wm.Entries, e)
	wm.Updated = now

	if err := jsonutil.MarshalIndentToFile(path, wm, 0o600); err != nil {
		return fmt.Errorf("writing working memory: %w", err)
	}
	return nil
}

// Clear removes the working-memory file. Absence is success.
func Clear() error {
	path, err := paths.WorkingMemoryPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing working memory: %w", err)
	}
	return nil
}
