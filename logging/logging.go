// Package logging provides structured logging for gateway components.
//
// Logger wraps a standard slog.Logger for local logging and can optionally
// mirror entries to NATS for remote consumption by operational tooling. The
// NATS mirror is best-effort: publish failures are logged locally and never
// fail the calling operation.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// LogLevel represents the severity level of a log entry
type LogLevel string

const (
	// LogLevelDebug represents debug-level logs
	LogLevelDebug LogLevel = "DEBUG"
	// LogLevelInfo represents informational logs
	LogLevelInfo LogLevel = "INFO"
	// LogLevelWarn represents warning logs
	LogLevelWarn LogLevel = "WARN"
	// LogLevelError represents error logs
	LogLevelError LogLevel = "ERROR"
)

// LogEntry is the structured entry published to NATS.
type LogEntry struct {
	Timestamp string   `json:"timestamp"` // RFC3339 format
	Level     LogLevel `json:"level"`
	Component string   `json:"component"`
	Message   string   `json:"message"`
	Stack     string   `json:"stack,omitempty"` // Error details for ERROR entries
}

// Logger provides structured logging scoped to a named gateway component.
type Logger struct {
	componentName string
	nc            *nats.Conn
	logger        *slog.Logger
	enabled       bool // whether NATS publishing is enabled
}

// NewLogger creates a component logger. nc may be nil to disable the NATS
// mirror; logger may be nil to disable local logging.
func NewLogger(componentName string, nc *nats.Conn, logger *slog.Logger) *Logger {
	return &Logger{
		componentName: componentName,
		nc:            nc,
		logger:        logger,
		enabled:       nc != nil,
	}
}

// Named returns a logger for a sub-component sharing the same sinks.
func (cl *Logger) Named(componentName string) *Logger {
	return &Logger{
		componentName: componentName,
		nc:            cl.nc,
		logger:        cl.logger,
		enabled:       cl.enabled,
	}
}

// Slog returns the underlying slog.Logger, which may be nil.
func (cl *Logger) Slog() *slog.Logger {
	return cl.logger
}

// Debug logs a debug-level message
func (cl *Logger) Debug(msg string, args ...any) {
	cl.publish(context.Background(), LogLevelDebug, msg, "")
	if cl.logger != nil {
		cl.logger.Debug(msg, append([]any{"component", cl.componentName}, args...)...)
	}
}

// Info logs an info-level message
func (cl *Logger) Info(msg string, args ...any) {
	cl.publish(context.Background(), LogLevelInfo, msg, "")
	if cl.logger != nil {
		cl.logger.Info(msg, append([]any{"component", cl.componentName}, args...)...)
	}
}

// Warn logs a warning-level message
func (cl *Logger) Warn(msg string, args ...any) {
	cl.publish(context.Background(), LogLevelWarn, msg, "")
	if cl.logger != nil {
		cl.logger.Warn(msg, append([]any{"component", cl.componentName}, args...)...)
	}
}

// Error logs an error-level message with optional error details
func (cl *Logger) Error(msg string, err error, args ...any) {
	stack := ""
	if err != nil {
		stack = fmt.Sprintf("%+v", err)
	}
	cl.publish(context.Background(), LogLevelError, msg, stack)
	if cl.logger != nil {
		cl.logger.Error(msg, append([]any{"component", cl.componentName, "error", err}, args...)...)
	}
}

// publish mirrors a log entry to NATS when enabled
func (cl *Logger) publish(ctx context.Context, level LogLevel, message, stack string) {
	if !cl.enabled {
		return
	}

	select {
	case <-ctx.Done():
		return
	default:
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Component: cl.componentName,
		Message:   message,
		Stack:     stack,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		if cl.logger != nil {
			cl.logger.Error("Failed to marshal log entry", "error", err)
		}
		return
	}

	nc := cl.nc
	if nc == nil {
		return
	}

	// Publish to NATS subject: gateway.logs.{component}
	subject := fmt.Sprintf("gateway.logs.%s", cl.componentName)
	if err := nc.Publish(subject, data); err != nil {
		if cl.logger != nil {
			cl.logger.Error("Failed to publish log to NATS", "error", err, "subject", subject)
		}
	}
}
