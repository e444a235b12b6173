// Package identity resolves who is making a call.
package identity

import "context"

// Caller is an opaque, comparable caller identity.
type Caller string

// Anonymous is the unauthenticated caller. It never owns a profile.
const Anonymous Caller = ""

func (c Caller) IsAnonymous() bool {
	return c == Anonymous
}

func (c Caller) String() string {
	if c.IsAnonymous() {
		return "anonymous"
	}
	return string(c)
}

type contextKey string

const callerKey contextKey = "caller"

// WithCaller stores c in ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// FromContext returns the caller stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Caller {
	if c, ok := ctx.Value(callerKey).(Caller); ok {
		return c
	}
	return Anonymous
}
