package logtrace

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	// CorrelationIDKey carries the request/run correlation ID through contexts.
	CorrelationIDKey ctxKey = "correlation_id"
	// OriginKey carries the logical origin of the work (command name).
	OriginKey ctxKey = "origin"
)

// CtxWithCorrelationID returns a new context carrying the given correlation ID.
func CtxWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// CtxWithNewCorrelationID returns a new context carrying a fresh UUID correlation ID.
func CtxWithNewCorrelationID(ctx context.Context) context.Context {
	return CtxWithCorrelationID(ctx, uuid.NewString())
}

// CtxWithOrigin returns a new context carrying the given origin tag.
func CtxWithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, OriginKey, origin)
}

// CorrelationIDFromContext extracts the correlation ID, or "unknown" when absent.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if v, ok := ctx.Value(CorrelationIDKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// OriginFromContext extracts the origin tag, or "" when absent.
func OriginFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(OriginKey).(string); ok {
		return v
	}
	return ""
}
