package memory

import (
	"fmt"
	"sort"
	"strings"
)

// TrailerSuggestions are commit-trailer candidates derived from a session's
// working memory.
type TrailerSuggestions struct {
	DecidedAgainst []string
	Scopes         []string
}

// GroupByTag partitions entries by tag, preserving order within each group.
func GroupByTag(entries []Entry) map[Tag][]Entry {
	groups := make(map[Tag][]Entry)
	for _, e := range entries {
		groups[e.Tag] = append(groups[e.Tag], e)
	}
	return groups
}

// CollectScopes unions every entry's scopes and sorts them.
func CollectScopes(entries []Entry) []string {
	seen := map[string]bool{}
	var scopes []string
	for _, e := range entries {
		for _, s := range e.Scope {
			if !seen[s] {
				seen[s] = true
				scopes = append(scopes, s)
			}
		}
	}
	sort.Strings(scopes)
	return scopes
}

// DecisionsToTrailers turns every decision-tagged entry into a
// Decided-Against candidate, with the union of all scopes attached.
//
// Note: the decision tag does not semantically imply rejection, so some
// candidates will be affirmative decisions. Review before committing.
func DecisionsToTrailers(entries []Entry) TrailerSuggestions {
	ts := TrailerSuggestions{Scopes: CollectScopes(entries)}
	for _, e := range entries {
		if e.Tag == TagDecision {
			ts.DecidedAgainst = append(ts.DecidedAgainst, e.Text)
		}
	}
	return ts
}

// summarySections fixes the section order of the session summary.
var summarySections = []struct {
	tag   Tag
	title string
}{
	{TagDecision, "Decisions"},
	{TagFinding, "Findings"},
	{TagHypothesis, "Hypotheses"},
	{TagContext, "Context"},
	{TagTodo, "TODOs"},
}

// FormatSessionSummary renders the whole working memory as Markdown with a
// fixed section order and one bullet per entry.
func FormatSessionSummary(wm *WorkingMemory) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Session Summary: %s\n\n", wm.SessionID)
	fmt.Fprintf(&sb, "- Started: %s\n", wm.Created)
	fmt.Fprintf(&sb, "- Updated: %s\n", wm.Updated)
	fmt.Fprintf(&sb, "- Entries: %d\n", len(wm.Entries))
	if scopes := CollectScopes(wm.Entries); len(scopes) > 0 {
		fmt.Fprintf(&sb, "- Scopes: %s\n", strings.Join(scopes, ", "))
	}

	groups := GroupByTag(wm.Entries)
	for _, section := range summarySections {
		entries := groups[section.tag]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", section.title)
		for _, e := range entries {
			sb.WriteString("- " + e.Text)
			if len(e.Scope) > 0 {
				sb.WriteString(" [" + strings.Join(e.Scope, ", ") + "]")
			}
			if e.Source != "" {
				sb.WriteString(" (source: " + e.Source + ")")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// FormatTrailerHints renders suggestions as ready-to-paste trailer lines:
// a Scope line (when any) followed by one Decided-Against line per rejection.
func FormatTrailerHints(ts TrailerSuggestions) string {
	var lines []string
	if len(ts.Scopes) > 0 {
		lines = append(lines, "Scope: "+strings.Join(ts.Scopes, ", "))
	}
	for _, d := range ts.DecidedAgainst {
		lines = append(lines, "Decided-Against: "+d)
	}
	return strings.Join(lines, "\n")
}
