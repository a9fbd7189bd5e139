package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger and provides structured logging capabilities.
type Logger struct {
	zlog zerolog.Logger
}

// New creates a Logger writing to stderr, leaving stdout to command output.
// In development mode, it outputs pretty-printed colored logs.
// In production mode, it outputs JSON formatted logs.
func New(env string) *Logger {
	return NewWithOutput(env, os.Stderr)
}

// NewWithOutput creates a Logger for env writing to w.
func NewWithOutput(env string, w io.Writer) *Logger {
	output := w

	if env == "development" {
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	// Configure global settings
	zerolog.TimeFieldFormat = time.RFC3339

	// Set log level based on environment
	level := zerolog.InfoLevel
	if env == "development" {
		level = zerolog.DebugLevel
	}

	// Create logger
	zlog := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{zlog: zlog}
}

// Debug logs a debug message with optional fields.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	send(l.zlog.Debug(), msg, fields)
}

// Info logs an info message with optional fields.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	send(l.zlog.Info(), msg, fields)
}

// Warn logs a warning message with optional fields.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	send(l.zlog.Warn(), msg, fields)
}

// Error logs msg with err attached. err may be nil.
func (l *Logger) Error(msg string, err error, fields map[string]interface{}) {
	send(l.zlog.Error().Err(err), msg, fields)
}

// Fatal logs a fatal message and exits the process.
func (l *Logger) Fatal(msg string, err error, fields map[string]interface{}) {
	send(l.zlog.Fatal().Err(err), msg, fields)
}

func send(event *zerolog.Event, msg string, fields map[string]interface{}) {
	if len(fields) > 0 {
		event = event.Fields(fields)
	}
	event.Msg(msg)
}

// With creates a child logger carrying fields on every entry.
func (l *Logger) With(fields map[string]interface{}) *Logger {
	return &Logger{zlog: l.zlog.With().Fields(fields).Logger()}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// WithStep creates a child logger tagged with a pipeline step name.
func (l *Logger) WithStep(step string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("step", step).Logger()}
}

// WithRequestID creates a child logger with a request ID field.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("request_id", requestID).Logger()}
}

// GetZerolog returns the underlying zerolog.Logger for advanced usage.
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}
