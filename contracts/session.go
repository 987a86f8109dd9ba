package contracts

import (
	"context"
)

type sessionKey struct{}

// WithSession returns a context carrying the opaque session identifier for the
// logical caller. The mediator never interprets the identifier; it only keys
// per-session statistics with it.
func WithSession(ctx context.Context, sessionID string) context.Context {
	if sessionID == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFromContext returns the session identifier carried by the context,
// or an empty string when the caller is anonymous.
func SessionFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok {
		return id
	}
	return ""
}
