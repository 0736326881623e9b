package logger

import (
	"context"
)

// contextKey is the key used to store logger in context
type contextKey struct{}

var loggerContextKey = contextKey{}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext extracts a logger from the context
// If no logger is found, returns the global logger
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return Get()
}
