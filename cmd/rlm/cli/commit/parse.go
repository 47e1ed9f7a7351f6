package commit

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// RecordSeparator starts each commit record in git log output.
// The full format is RecordSeparator, then Hash/Date/Subject lines, then the
// raw body and trailers.
const RecordSeparator = "---commit---"

// Parse failures.
var (
	ErrMissingRequiredFields  = errors.New("missing-required-fields")
	ErrNonConventionalSubject = errors.New("non-conventional-subject")
)

// headerRegex matches a conventional-commit subject line.
var headerRegex = regexp.MustCompile(
	`^(` + strings.Join(CommitTypes, "|") + `)(\(([^)]+)\))?(!)?:\s+(.+)$`,
)

// trailerLineRegex matches a Key: value line. Whether the line counts as a
// trailer is decided by the known-keys allow-list, not by shape.
var trailerLineRegex = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9-]*)\s*:\s?(.*)$`)

// SplitRecords splits raw git log output into individual commit records.
func SplitRecords(logOutput string) []string {
	var records []string
	for _, chunk := range strings.Split(logOutput, RecordSeparator+"\n") {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		records = append(records, chunk)
	}
	return records
}

// ParseRecord parses one commit record into a StructuredCommit.
// Fails with ErrMissingRequiredFields when the Hash, Date, or Subject lines
// are absent, and ErrNonConventionalSubject when the subject does not match
// the conventional-commit header format.
func ParseRecord(record string) (*StructuredCommit, error) {
	lines := strings.Split(record, "\n")

	var hash, date, subject string
	var subjectSeen bool
	body := len(lines)
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "Hash: "):
			hash = strings.TrimSpace(strings.TrimPrefix(line, "Hash: "))
		case strings.HasPrefix(line, "Date: "):
			date = strings.TrimSpace(strings.TrimPrefix(line, "Date: "))
		case strings.HasPrefix(line, "Subject: "):
			subject = strings.TrimPrefix(line, "Subject: ")
			subjectSeen = true
		}
		if subjectSeen {
			body = i + 1
			break
		}
	}
	if hash == "" || date == "" || !subjectSeen {
		return nil, fmt.Errorf("%w: record %.40q", ErrMissingRequiredFields, record)
	}

	m := headerRegex.FindStringSubmatch(subject)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrNonConventionalSubject, subject)
	}

	sc := &StructuredCommit{
		Hash:        hash,
		Date:        date,
		Type:        m[1],
		HeaderScope: m[3],
		Subject:     m[5],
	}

	message := strings.Join(lines[body:], "\n")
	sc.Body, _ = applyTrailers(sc, message)
	return sc, nil
}

// applyTrailers splits the message into body and trailers and fills the typed
// trailer fields. Returns the body and the raw trailer list.
func applyTrailers(sc *StructuredCommit, message string) (string, []Trailer) {
	body, trailers := SplitBodyTrailers(message)
	for _, t := range trailers {
		key := strings.ToLower(t.Key)
		value := strings.TrimSpace(t.Value)
		switch key {
		case "intent":
			if sc.Intent == "" && ValidIntent(value) {
				sc.Intent = Intent(value)
			}
		case "scope":
			sc.Scope = append(sc.Scope, splitList(value)...)
		case "decided-against":
			if value != "" {
				sc.DecidedAgainst = append(sc.DecidedAgainst, value)
			}
		case "session":
			if sc.Session == "" {
				sc.Session = value
			}
		case "refs":
			sc.Refs = append(sc.Refs, splitList(value)...)
		case "context":
			var ctx map[string]any
			if err := json.Unmarshal([]byte(value), &ctx); err == nil {
				sc.Context = ctx
			}
		case "breaking":
			if sc.Breaking == "" {
				sc.Breaking = value
			}
		}
	}
	return body, trailers
}

// SplitBodyTrailers separates a commit message body from its trailer block.
//
// The trailer block is the last contiguous run of Key: value lines whose
// lowercased key is in the known-keys allow-list. A single blank line between
// trailer groups is tolerated only when the lines above it are also
// recognized trailers (structured trailers, blank, Co-Authored-By). Any
// non-trailer, non-blank line terminates the scan; everything above it is
// body.
func SplitBodyTrailers(message string) (string, []Trailer) {
	lines := strings.Split(message, "\n")

	// Drop trailing blank lines before scanning.
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}

	var reversed []Trailer
	sawBlank := false
	i := end - 1
	for i >= 0 {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			sawBlank = true
			// Tolerate a single separating blank only when the line above is
			// itself a recognized trailer.
			if len(reversed) == 0 || i == 0 {
				break
			}
			if _, ok := parseTrailerLine(lines[i-1]); !ok {
				break
			}
			i--
			continue
		}
		t, ok := parseTrailerLine(line)
		if !ok {
			// Trailers glued directly onto body text with no separating blank
			// line are body, not trailers.
			if !sawBlank {
				return strings.TrimRight(message, "\n"), nil
			}
			break
		}
		reversed = append(reversed, t)
		i--
	}

	trailers := make([]Trailer, 0, len(reversed))
	for j := len(reversed) - 1; j >= 0; j-- {
		trailers = append(trailers, reversed[j])
	}

	body := strings.Join(lines[:i+1], "\n")
	return strings.TrimRight(body, "\n"), trailers
}

func parseTrailerLine(line string) (Trailer, bool) {
	m := trailerLineRegex.FindStringSubmatch(line)
	if m == nil {
		return Trailer{}, false
	}
	if !knownTrailerKeys[strings.ToLower(m[1])] {
		return Trailer{}, false
	}
	return Trailer{Key: m[1], Value: m[2]}, true
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// FormatMessage renders a StructuredCommit back into a full commit message
// with header, body, and trailer block.
func FormatMessage(sc *StructuredCommit) string {
	var sb strings.Builder
	sb.WriteString(sc.Type)
	if sc.HeaderScope != "" {
		sb.WriteString("(" + sc.HeaderScope + ")")
	}
	sb.WriteString(": " + sc.Subject)

	if sc.Body != "" {
		sb.WriteString("\n\n" + sc.Body)
	}

	var trailers []string
	if sc.Intent != "" {
		trailers = append(trailers, "Intent: "+string(sc.Intent))
	}
	if len(sc.Scope) > 0 {
		trailers = append(trailers, "Scope: "+strings.Join(sc.Scope, ", "))
	}
	for _, d := range sc.DecidedAgainst {
		trailers = append(trailers, "Decided-Against: "+d)
	}
	if sc.Session != "" {
		trailers = append(trailers, "Session: "+sc.Session)
	}
	if len(sc.Refs) > 0 {
		trailers = append(trailers, "Refs: "+strings.Join(sc.Refs, ", "))
	}
	if sc.Context != nil {
		if data, err := json.Marshal(sc.Context); err == nil {
			trailers = append(trailers, "Context: "+string(data))
		}
	}
	if sc.Breaking != "" {
		trailers = append(trailers, "Breaking: "+sc.Breaking)
	}
	if len(trailers) > 0 {
		sb.WriteString("\n\n" + strings.Join(trailers, "\n"))
	}
	return sb.String()
}

// FormatRecord renders a StructuredCommit as a git log record, the inverse of
// ParseRecord.
func FormatRecord(sc *StructuredCommit) string {
	subject := sc.Type
	if sc.HeaderScope != "" {
		subject += "(" + sc.HeaderScope + ")"
	}
	subject += ": " + sc.Subject

	msg := FormatMessage(sc)
	rest := ""
	if i := strings.Index(msg, "\n\n"); i >= 0 {
		rest = msg[i+2:]
	}
	return fmt.Sprintf("%s\nHash: %s\nDate: %s\nSubject: %s\n%s\n", RecordSeparator, sc.Hash, sc.Date, subject, rest)
}
