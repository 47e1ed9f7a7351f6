package sandbox

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/srdjan/rlm-git-commits/cmd/rlm/cli/index"
)

// exportQuery reads a query parameter object from JS. Unknown keys are
// ignored; wrong-typed values fall back to zero values rather than throwing.
func exportQuery(v goja.Value) index.Query {
	var q index.Query
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return q
	}
	params, ok := v.Export().(map[string]any)
	if !ok {
		return q
	}

	if s, ok := params["scope"].(string); ok {
		q.Scope = s
	}
	if s, ok := params["session"].(string); ok {
		q.Session = s
	}
	if s, ok := params["decidedAgainst"].(string); ok {
		q.DecidedAgainst = s
	}
	switch limit := params["limit"].(type) {
	case int64:
		q.Limit = int(limit)
	case float64:
		q.Limit = int(limit)
	}
	if intents, ok := params["intents"].([]any); ok {
		for _, i := range intents {
			if s, ok := i.(string); ok {
				q.Intents = append(q.Intents, s)
			}
		}
	}
	// A single intent string is accepted as a convenience.
	if s, ok := params["intents"].(string); ok {
		q.Intents = append(q.Intents, s)
	}
	return q
}

// exportMessages reads a chat message array from JS. Plain strings are
// wrapped as user messages.
func exportMessages(v goja.Value) []Message {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if s, ok := v.Export().(string); ok {
		return []Message{{Role: "user", Content: s}}
	}
	items, ok := v.Export().([]any)
	if !ok {
		return nil
	}
	var msgs []Message
	for _, item := range items {
		switch m := item.(type) {
		case string:
			msgs = append(msgs, Message{Role: "user", Content: m})
		case map[string]any:
			msg := Message{}
			if role, ok := m["role"].(string); ok {
				msg.Role = role
			}
			if content, ok := m["content"].(string); ok {
				msg.Content = content
			}
			if msg.Role == "" {
				msg.Role = "user"
			}
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// exportStrings reads a string array from JS, stringifying non-string
// elements so numeric -n values survive.
func exportStrings(v goja.Value) []string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if s, ok := v.Export().(string); ok {
		return []string{s}
	}
	items, ok := v.Export().([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch s := item.(type) {
		case string:
			out = append(out, s)
		default:
			out = append(out, fmt.Sprint(item))
		}
	}
	return out
}
