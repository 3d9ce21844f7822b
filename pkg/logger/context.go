package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// With derives a context carrying a logger extended with fields. Middleware
// uses it to attach per-request fields once instead of on every log call.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, contextKey{}, From(ctx).With(fields...))
}

// From returns the request-scoped logger, falling back to the process logger
// when the context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
