// Package observability provides structured logging, Prometheus metrics,
// and health-check plumbing for the Gatehouse authority.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLogLevel parses a log level string, defaulting to info.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l LogLevel) toSlogLevel() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger provides structured JSON logging on top of stdlib slog.
type Logger struct {
	logger *slog.Logger
	level  LogLevel
}

// NewLogger creates a structured logger writing JSON to output (stdout when
// nil).
func NewLogger(level LogLevel, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}
	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: level.toSlogLevel(),
	})
	return &Logger{logger: slog.New(handler), level: level}
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With(key, value), level: l.level}
}

// WithFields adds multiple fields to the logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{logger: l.logger.With(args...), level: l.level}
}

// WithError adds an error to the logger context
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// Debug logs a debug message
func (l *Logger) Debug(message string) { l.logger.Debug(message) }

// Info logs an info message
func (l *Logger) Info(message string) { l.logger.Info(message) }

// Warn logs a warning message
func (l *Logger) Warn(message string) { l.logger.Warn(message) }

// Error logs an error message
func (l *Logger) Error(message string) { l.logger.Error(message) }

// contextKey is the type for context keys
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	principalKey contextKey = "principal_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithPrincipalID adds the authenticated principal's id to the context
func WithPrincipalID(ctx context.Context, principalID string) context.Context {
	return context.WithValue(ctx, principalKey, principalID)
}

// GetPrincipalID retrieves the principal id from context
func GetPrincipalID(ctx context.Context) string {
	if principalID, ok := ctx.Value(principalKey).(string); ok {
		return principalID
	}
	return ""
}

// FromContext annotates the logger with request and principal ids carried in
// the context.
func (l *Logger) FromContext(ctx context.Context) *Logger {
	out := l
	if requestID := GetRequestID(ctx); requestID != "" {
		out = out.WithField("request_id", requestID)
	}
	if principalID := GetPrincipalID(ctx); principalID != "" {
		out = out.WithField("principal_id", principalID)
	}
	return out
}
