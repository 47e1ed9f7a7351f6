package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	componentKey contextKey = "component"
	hookKey      contextKey = "hook"
)

// WithSession returns a context carrying the session ID for log records.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithComponent returns a context carrying the component name for log records.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// WithHook returns a context carrying the hook name for log records.
func WithHook(ctx context.Context, hook string) context.Context {
	return context.WithValue(ctx, hookKey, hook)
}

// attrsFromContext extracts logging attributes from a context.
// If globalSessionID is non-empty, session_id from context is skipped to
// avoid duplicates.
func attrsFromContext(ctx context.Context, globalSessionID string) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	if globalSessionID == "" {
		if s, ok := ctx.Value(sessionIDKey).(string); ok && s != "" {
			attrs = append(attrs, slog.String("session_id", s))
		}
	}
	if s, ok := ctx.Value(componentKey).(string); ok && s != "" {
		attrs = append(attrs, slog.String("component", s))
	}
	if s, ok := ctx.Value(hookKey).(string); ok && s != "" {
		attrs = append(attrs, slog.String("hook", s))
	}
	return attrs
}
