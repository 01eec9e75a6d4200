package common

import (
	"context"
	"log/slog"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyLogger    contextKey = "logger"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithLogger stores a request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ContextKeyLogger, logger)
}

// LoggerFromContext returns the request-scoped logger, or fallback. When the
// context carries a request ID it is attached as req_id.
func LoggerFromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	logger := fallback
	if l, ok := ctx.Value(ContextKeyLogger).(*slog.Logger); ok && l != nil {
		logger = l
	}
	if logger == nil {
		logger = slog.Default()
	}
	if id := RequestIDFromContext(ctx); id != "" {
		logger = logger.With("req_id", id)
	}
	return logger
}
