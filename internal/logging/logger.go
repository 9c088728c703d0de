// Package logging provides a logging abstraction that decouples the
// application from a specific logging framework. The production
// implementation is backed by logrus; tests use the mock implementation.
package logging

// Logger is the structured logging interface used throughout the application.
type Logger interface {
	// Debug logs a debug-level message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with optional fields
	Error(msg string, fields ...Field)

	// WithError returns a new logger with an error field attached
	WithError(err error) Logger

	// WithField returns a new logger with a single field attached
	WithField(key string, value interface{}) Logger

	// WithFields returns a new logger with multiple fields attached
	WithFields(fields ...Field) Logger

	// Fatal logs a fatal-level message and exits the program
	Fatal(msg string, fields ...Field)
}

// Field is a key-value pair attached to a log message.
type Field struct {
	Key   string
	Value interface{}
}

// Standardized field names for structured logging, kept consistent so log
// output stays easy to filter.
const (
	FieldCategory   = "category"
	FieldConfidence = "confidence"
	FieldMethod     = "method"
	FieldTerm       = "matched_term"
	FieldCount      = "count"
	FieldDuration   = "duration_ms"
	FieldKey        = "key"
	FieldPath       = "path"
	FieldRequestID  = "request_id"
)

// GetLogger returns a Logger with default settings (info level, text format).
// Components that are not handed a logger explicitly fall back to this.
func GetLogger() Logger {
	return NewLogrusAdapter("info", "text")
}
