package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/gitx"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/index"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/logging"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/memory"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/paths"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/settings"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/signals"
)

// maxContextCommits caps how many commits one hook invocation injects.
const maxContextCommits = 10

// handlePromptSubmit analyzes the submitted prompt, queries the index along
// every extracted signal, and writes context blocks to stdout for the agent.
func handlePromptSubmit(ctx context.Context, hc *hookContext) error {
	input, err := parseHookInput(os.Stdin)
	if err != nil {
		return err
	}
	if strings.TrimSpace(input.Prompt) == "" {
		return nil
	}

	cfg, err := settings.Load()
	if err != nil {
		return err
	}

	sessionID, err := currentSessionID(input.SessionID)
	if err != nil {
		return err
	}

	repo, err := gitx.Open()
	if err != nil {
		return err
	}

	ix, err := index.LoadFresh(repo)
	if err != nil {
		return err
	}

	var scopeKeys []string
	if ix != nil {
		scopeKeys = ix.ScopeKeys()
	}
	sig := signals.Extract(input.Prompt, scopeKeys)
	logging.Debug(hc.ctx, "prompt signals",
		slog.Int("scope_hints", len(sig.ScopeHints)),
		slog.Int("intent_hints", len(sig.IntentHints)),
		slog.Int("keywords", len(sig.Keywords)),
		slog.Bool("index_fresh", ix != nil),
	)

	commits, err := collectContextCommits(ctx, repo, ix, sig)
	if err != nil {
		return err
	}

	if len(commits) > 0 {
		fmt.Println(formatCommitContext(commits))
	}

	if wm, err := memory.Load(sessionID); err == nil && wm != nil {
		if block := memory.Format(wm, 0); block != "" {
			fmt.Println(block)
		}
	}

	if cfg.Enabled && cfg.ReplEnabled {
		env, repo, err := loadReplEnv(ctx)
		if err != nil {
			return err
		}
		result, err := runRepl(ctx, cfg, input.Prompt, env, repo)
		if err != nil {
			return err
		}
		if strings.TrimSpace(result.Answer) != "" {
			fmt.Printf("<rlm-analysis iterations=\"%d\">\n%s\n</rlm-analysis>\n", result.Iterations, result.Answer)
		}
	}
	return nil
}

// collectContextCommits unions query results across the prompt's signals,
// preferring scope-directed queries and falling back to live git log when the
// index is stale.
func collectContextCommits(ctx context.Context, repo *gitx.Repo, ix *index.TrailerIndex, sig signals.Signals) ([]index.IndexedCommit, error) {
	var queries []index.Query

	intents := make([]string, len(sig.IntentHints))
	for i, intent := range sig.IntentHints {
		intents[i] = string(intent)
	}

	for _, hint := range sig.ScopeHints {
		queries = append(queries, index.Query{Scope: hint, Intents: intents})
	}
	if len(queries) == 0 && len(intents) > 0 {
		queries = append(queries, index.Query{Intents: intents})
	}
	for _, kw := range sig.Keywords {
		queries = append(queries, index.Query{DecidedAgainst: kw})
	}

	seen := map[string]bool{}
	var commits []index.IndexedCommit
	for _, q := range queries {
		var results []index.IndexedCommit
		var err error
		if ix != nil {
			results = ix.Search(q)
		} else {
			results, err = index.LiveSearch(ctx, repo, q)
			if err != nil {
				return nil, err
			}
		}
		for _, ic := range results {
			if seen[ic.Hash] {
				continue
			}
			seen[ic.Hash] = true
			commits = append(commits, ic)
			if len(commits) >= maxContextCommits {
				return commits, nil
			}
		}
	}
	return commits, nil
}

// formatCommitContext renders matched commits as the XML-tagged block the
// host agent splices into the model's context.
func formatCommitContext(commits []index.IndexedCommit) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<commit-context commits=\"%d\">\n", len(commits))
	for _, ic := range commits {
		sb.WriteString(formatIndexedCommit(ic) + "\n")
	}
	sb.WriteString("</commit-context>")
	return sb.String()
}

// handlePostTool watches the agent's shell commands for index queries
// (`rlm query …`) and answers them from the index, so the agent gets results
// even when the command itself ran without a built index.
func handlePostTool(ctx context.Context, hc *hookContext) error {
	input, err := parseHookInput(os.Stdin)
	if err != nil {
		return err
	}
	if input.ToolName != "Bash" {
		return nil
	}

	q, ok := parseQueryCommand(input.ToolInput.Command)
	if !ok {
		return nil
	}
	logging.Debug(hc.ctx, "post-tool query", slog.String("command", input.ToolInput.Command))

	repo, err := gitx.Open()
	if err != nil {
		return err
	}

	ix, err := index.LoadFresh(repo)
	if err != nil {
		return err
	}

	var results []index.IndexedCommit
	if ix != nil {
		results = ix.Search(q)
	} else {
		results, err = index.LiveSearch(ctx, repo, q)
		if err != nil {
			return err
		}
	}

	if len(results) == 0 {
		fmt.Println("<commit-query>\nNo matching commits.\n</commit-query>")
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "<commit-query commits=\"%d\">\n", len(results))
	for _, ic := range results {
		sb.WriteString(formatIndexedCommit(ic) + "\n")
	}
	sb.WriteString("</commit-query>")
	fmt.Println(sb.String())
	return nil
}

// parseQueryCommand recognizes `rlm query …` shell commands and extracts the
// query flags. ok is false for anything else.
func parseQueryCommand(command string) (index.Query, bool) {
	var q index.Query
	tokens := splitCommand(command)
	if len(tokens) < 2 || tokens[0] != "rlm" || tokens[1] != "query" {
		return q, false
	}

	next := func(i int) (string, bool) {
		if i+1 < len(tokens) {
			return tokens[i+1], true
		}
		return "", false
	}
	for i := 2; i < len(tokens); i++ {
		flag, inline, hasInline := strings.Cut(tokens[i], "=")
		value := inline
		if !hasInline {
			value, _ = next(i)
		}
		switch flag {
		case "--scope":
			q.Scope = value
		case "--intent":
			if value != "" {
				q.Intents = append(q.Intents, value)
			}
		case "--session":
			q.Session = value
		case "--decided-against":
			q.DecidedAgainst = value
		case "--limit":
			if n, err := strconv.Atoi(value); err == nil {
				q.Limit = n
			}
		default:
			continue
		}
		if !hasInline {
			i++
		}
	}
	return q, true
}

// splitCommand tokenizes a shell command, honoring single and double quotes.
func splitCommand(command string) []string {
	var tokens []string
	var current strings.Builder
	var quote rune
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range command {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// handleSessionStop consolidates working memory into a session summary,
// prints trailer suggestions for the closing commit, and clears the session.
func handleSessionStop(_ context.Context, hc *hookContext) error {
	// The stop envelope is read for its session id, but a missing or empty
	// envelope still consolidates the persisted session.
	input, _ := parseHookInput(os.Stdin)

	sessionID, err := paths.ReadCurrentSession()
	if err != nil {
		return err
	}
	if sessionID == "" && input != nil {
		sessionID, err = currentSessionID(input.SessionID)
		if err != nil {
			return err
		}
	}
	if sessionID == "" {
		return nil
	}

	wm, err := memory.Load(sessionID)
	if err != nil {
		return err
	}
	if wm == nil || len(wm.Entries) == 0 {
		return paths.ClearCurrentSession()
	}

	summaryPath, err := writeSessionSummary(wm)
	if err != nil {
		return err
	}
	logging.Info(hc.ctx, "session consolidated",
		slog.Int("entries", len(wm.Entries)),
		slog.String("summary", summaryPath),
	)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<session-consolidation session=%q entries=\"%d\">\n", wm.SessionID, len(wm.Entries))
	fmt.Fprintf(&sb, "Summary written to %s\n", summaryPath)
	if hints := memory.FormatTrailerHints(memory.DecisionsToTrailers(wm.Entries)); hints != "" {
		sb.WriteString("Suggested commit trailers:\n" + hints + "\n")
	}
	sb.WriteString("</session-consolidation>")
	fmt.Println(sb.String())

	if err := memory.Clear(); err != nil {
		return err
	}
	return paths.ClearCurrentSession()
}
