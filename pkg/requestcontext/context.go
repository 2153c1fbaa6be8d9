// Package requestcontext provides HTTP-independent context accessors for
// run-scoped values.
//
// Scheduler runs, manual triggers and tests all use the same accessors:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithRunID(ctx, runID)
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"
)

type (
	runIDKey       struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyRunID       = runIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// RunID retrieves the dispatch run (or request) correlation id.
func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return id
	}
	return ""
}

// WithRunID injects a correlation id into the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// Now retrieves the run-scoped time from context.
// Falls back to time.Now() if not set.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Workers use it so every candidate in a batch sees the same "today".
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// EnsureTime pins the current time into ctx unless a time is already set.
func EnsureTime(ctx context.Context) context.Context {
	if _, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return ctx
	}
	return WithTime(ctx, time.Now())
}
