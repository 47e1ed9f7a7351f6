package memory

import (
	"fmt"
	"strings"
)

// DefaultFormatEntries is how many trailing entries Format renders.
const DefaultFormatEntries = 20

// Format renders the last n entries (default 20) as a tagged plain-text block
// suitable for injection into an agent's context.
func Format(wm *WorkingMemory, n int) string {
	if wm == nil || len(wm.Entries) == 0 {
		return ""
	}
	if n <= 0 {
		n = DefaultFormatEntries
	}

	entries := wm.Entries
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<working-memory session=%q entries=\"%d\">\n", wm.SessionID, len(wm.Entries))
	for _, e := range entries {
		sb.WriteString("[" + string(e.Tag) + "]")
		if len(e.Scope) > 0 {
			sb.WriteString(" (" + strings.Join(e.Scope, ", ") + ")")
		}
		sb.WriteString(" " + e.Text)
		if e.Source != "" {
			sb.WriteString(" (source: " + e.Source + ")")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("</working-memory>")
	return sb.String()
}
