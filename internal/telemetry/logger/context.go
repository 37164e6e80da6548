package logger

import "context"

type contextKey string

const (
	loggerKey  contextKey = "persistval.logger"
	commandKey contextKey = "persistval.command"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithCommand records the CLI command being run.
func WithCommand(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, commandKey, name)
}

// CommandFromContext returns the command recorded by WithCommand.
func CommandFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(commandKey).(string); ok {
		return name
	}
	return ""
}

// L returns the context logger enriched with the command name, if any.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if cmd := CommandFromContext(ctx); cmd != "" {
		l = l.With("command", cmd)
	}
	return l
}
