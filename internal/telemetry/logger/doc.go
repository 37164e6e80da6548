// Package logger provides structured logging for persistval.
//
// It wraps log/slog:
//
//   - logger.go: handler construction, level control, default logger
//   - context.go: logger and command name propagation through context
//   - redact.go: masking of passphrases and similar attributes
package logger
