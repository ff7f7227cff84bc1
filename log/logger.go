package log

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger defines the interface for logging in the body parser
type Logger interface {
	// Debug logs a debug message
	Debug(msg string, fields ...Field)
	// Info logs an info message
	Info(msg string, fields ...Field)
	// Warn logs a warning message
	Warn(msg string, fields ...Field)
	// Error logs an error message
	Error(msg string, fields ...Field)
	// Panic logs a panic message and panics
	Panic(msg string, fields ...Field)
	// Fatal logs a fatal message and exits
	Fatal(msg string, fields ...Field)

	// WithFields returns a logger with additional fields
	WithFields(fields ...Field) Logger
	// WithContext returns a logger with context
	WithContext(ctx context.Context) Logger
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

// F is a helper function to create a Field
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// E is a helper function to create a Field with the key set to "error"
func E(value any) Field {
	return Field{Key: "error", Value: value}
}

// P is a helper function to create a Field with the key set to "panic"
func P(value any) Field {
	return Field{Key: "panic", Value: value}
}

// DefaultLogger implements Logger on top of zerolog
type DefaultLogger struct {
	logger zerolog.Logger
}

// NewDefaultLogger creates a logger writing JSON lines with timestamps to stdout.
func NewDefaultLogger() *DefaultLogger {
	return NewWriterLogger(os.Stdout)
}

// NewWriterLogger creates a logger writing JSON lines with timestamps to w.
func NewWriterLogger(w io.Writer) *DefaultLogger {
	return &DefaultLogger{logger: zerolog.New(w).With().Timestamp().Logger()}
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(logger zerolog.Logger) *DefaultLogger {
	return &DefaultLogger{logger: logger}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *DefaultLogger {
	return &DefaultLogger{logger: zerolog.Nop()}
}

// Debug logs a debug message with optional fields
func (l *DefaultLogger) Debug(msg string, fields ...Field) {
	l.write(l.logger.Debug(), msg, fields...)
}

// Info logs an info message with optional fields
func (l *DefaultLogger) Info(msg string, fields ...Field) {
	l.write(l.logger.Info(), msg, fields...)
}

// Warn logs a warning message with optional fields
func (l *DefaultLogger) Warn(msg string, fields ...Field) {
	l.write(l.logger.Warn(), msg, fields...)
}

// Error logs an error message with optional fields
func (l *DefaultLogger) Error(msg string, fields ...Field) {
	l.write(l.logger.Error(), msg, fields...)
}

// Panic logs a panic message with optional fields and then panics
func (l *DefaultLogger) Panic(msg string, fields ...Field) {
	l.write(l.logger.Panic(), msg, fields...)
}

// Fatal logs a fatal message with optional fields and then exits with code 1
func (l *DefaultLogger) Fatal(msg string, fields ...Field) {
	l.write(l.logger.Fatal(), msg, fields...)
}

// WithFields creates a new logger instance with additional fields.
func (l *DefaultLogger) WithFields(fields ...Field) Logger {
	ctx := l.logger.With()
	for _, field := range fields {
		ctx = ctx.Interface(field.Key, field.Value)
	}
	return &DefaultLogger{logger: ctx.Logger()}
}

// WithContext creates a new logger instance carrying ctx.
func (l *DefaultLogger) WithContext(ctx context.Context) Logger {
	return &DefaultLogger{logger: l.logger.With().Ctx(ctx).Logger()}
}

func (l *DefaultLogger) write(event *zerolog.Event, msg string, fields ...Field) {
	for _, field := range fields {
		switch v := field.Value.(type) {
		case error:
			event.AnErr(field.Key, v)
		case string:
			event.Str(field.Key, v)
		case int:
			event.Int(field.Key, v)
		case int64:
			event.Int64(field.Key, v)
		case float64:
			event.Float64(field.Key, v)
		case bool:
			event.Bool(field.Key, v)
		case fmt.Stringer:
			event.Stringer(field.Key, v)
		default:
			event.Interface(field.Key, v)
		}
	}
	event.Msg(msg)
}
