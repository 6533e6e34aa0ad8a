// Package context carries the caller identity and correlation ids of a
// request from the HTTP edge down to the use cases and the logger.
package context

import (
	"context"
)

type (
	traceKey struct{}
	userKey  struct{}
)

// Trace correlates the log lines of one request.
type Trace struct {
	TraceID   string
	RequestID string
}

// WithTrace stores t in ctx.
func WithTrace(ctx context.Context, t Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// TraceFrom returns the trace stored in ctx.
func TraceFrom(ctx context.Context) (Trace, bool) {
	t, ok := ctx.Value(traceKey{}).(Trace)
	return t, ok
}

// UserContext is the identity a verified access token carries. Roles are raw
// strings; security.ActorFromContext turns them into an Actor.
type UserContext struct {
	UserID string
	Email  string
	Name   string
	Roles  []string
}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser returns the authenticated user, or nil for anonymous requests.
func GetUser(ctx context.Context) *UserContext {
	u, _ := ctx.Value(userKey{}).(*UserContext)
	return u
}

// GetUserID returns the authenticated user id, or "".
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}
