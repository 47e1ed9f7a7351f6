package rlm

import (
	"fmt"
	"strings"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/commit"
	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/rlm/sandbox"
)

// scopeKeySampleMax caps how many scope keys the system prompt reveals.
const scopeKeySampleMax = 20

// BuildSystemPrompt describes the sandbox API to the model. It names the API
// shapes, the intent vocabulary, a capped scope-key sample, and the budgets —
// never raw index contents or commit hashes.
func BuildSystemPrompt(env sandbox.Env, rc ReplConfig) string {
	var sb strings.Builder

	sb.WriteString("You analyze a git repository's commit-history memory by writing JavaScript.\n")
	sb.WriteString("Each reply must contain one fenced code block (```js). The code runs in a sandbox with these globals:\n\n")
	sb.WriteString("- query({scope?, intents?, session?, decidedAgainst?, limit?}) -> [{hash, date, subject, intent, scope, session, decidedAgainst}]\n")
	sb.WriteString("- callLlm(messages) -> Promise<string>  // messages: [{role, content}]\n")
	sb.WriteString("- gitLog(args) -> Promise<string>       // sanitized git log; flags limited to --format, --author, --since, --until, --grep, --no-merges, -n (max 50)\n")
	sb.WriteString("- done(answer)                          // finish with your answer string\n")
	sb.WriteString("- console.log(...)                      // inspect intermediate results\n")
	sb.WriteString("- index, workingMemory, scopeKeys       // read-only data\n\n")

	intents := make([]string, len(commit.Intents))
	for i, intent := range commit.Intents {
		intents[i] = string(intent)
	}
	sb.WriteString("Intents: " + strings.Join(intents, ", ") + "\n")

	commitCount := 0
	if env.Index != nil {
		commitCount = env.Index.CommitCount
	}
	fmt.Fprintf(&sb, "Indexed commits: %d\n", commitCount)

	keys := env.ScopeKeys
	if len(keys) > scopeKeySampleMax {
		keys = keys[:scopeKeySampleMax]
	}
	if len(keys) > 0 {
		sb.WriteString("Scope keys (sample): " + strings.Join(keys, ", ") + "\n")
	}
	if env.WorkingMemory != nil && len(env.WorkingMemory.Entries) > 0 {
		fmt.Fprintf(&sb, "Working memory: %d entries in workingMemory.entries\n", len(env.WorkingMemory.Entries))
	} else {
		sb.WriteString("Working memory: none\n")
	}

	fmt.Fprintf(&sb, "\nBudgets: %d iterations, %d LLM calls, %dms total. Hierarchical scopes: query({scope:'auth'}) matches auth and auth/*.\n",
		rc.MaxIterations, rc.MaxLlmCalls, rc.TimeoutBudgetMs)
	sb.WriteString("Variables you set on globalThis persist between turns. Call done(answer) when finished.")

	return sb.String()
}

// ExtractCodeBlock returns the first fenced code block in an LLM response.
// Recognized fences: ```js, ```javascript, and bare ```. A missing closing
// fence treats the remainder as code. ok is false when no fence exists, in
// which case the whole response is the final answer.
func ExtractCodeBlock(response string) (string, bool) {
	lines := strings.Split(response, "\n")
	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "```js" || trimmed == "```javascript" || trimmed == "```" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return "", false
	}
	for i := start; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "```" {
			return strings.Join(lines[start:i], "\n"), true
		}
	}
	return strings.Join(lines[start:], "\n"), true
}
