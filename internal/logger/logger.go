package logger

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultLogger *logrus.Logger
	initOnce      sync.Once
)

// Initialize sets up the global logger with the specified level and format
func Initialize(level, format string) {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	logLevel, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	l.SetLevel(logLevel)

	if strings.ToLower(format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	defaultLogger = l
}

// Get returns the default logger
func Get() *logrus.Logger {
	initOnce.Do(func() {
		if defaultLogger == nil {
			Initialize("info", "text")
		}
	})
	return defaultLogger
}

// Fields converts slog-style key/value pairs into logrus fields. A dangling
// value without a key is recorded under "!BADKEY".
func Fields(args ...any) logrus.Fields {
	fields := make(logrus.Fields, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			fields["!BADKEY"] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		fields[key] = args[i+1]
	}
	return fields
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Get().WithFields(Fields(args...)).Debug(msg)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Get().WithFields(Fields(args...)).Info(msg)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Get().WithFields(Fields(args...)).Warn(msg)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Get().WithFields(Fields(args...)).Error(msg)
}

// DebugContext logs a debug message with context
func DebugContext(ctx context.Context, msg string, args ...any) {
	Get().WithContext(ctx).WithFields(Fields(args...)).Debug(msg)
}

// InfoContext logs an info message with context
func InfoContext(ctx context.Context, msg string, args ...any) {
	Get().WithContext(ctx).WithFields(Fields(args...)).Info(msg)
}

// WarnContext logs a warning message with context
func WarnContext(ctx context.Context, msg string, args ...any) {
	Get().WithContext(ctx).WithFields(Fields(args...)).Warn(msg)
}

// ErrorContext logs an error message with context
func ErrorContext(ctx context.Context, msg string, args ...any) {
	Get().WithContext(ctx).WithFields(Fields(args...)).Error(msg)
}

// WithMethod returns a logger with method name attached
func WithMethod(methodName string) *logrus.Entry {
	return Get().WithField("method", methodName)
}

// WithService returns a logger with service name attached
func WithService(serviceName string) *logrus.Entry {
	return Get().WithField("service", serviceName)
}

// EnterMethod logs method entry (process tracking)
func EnterMethod(methodName string, args ...any) {
	allArgs := append([]any{"method", methodName, "event", "enter"}, args...)
	Debug("→ Method entered", allArgs...)
}

// ExitMethod logs method exit (process tracking)
func ExitMethod(methodName string, args ...any) {
	allArgs := append([]any{"method", methodName, "event", "exit"}, args...)
	Debug("← Method exited", allArgs...)
}

// ExitMethodWithError logs method exit with error (process tracking)
func ExitMethodWithError(methodName string, err error, args ...any) {
	allArgs := append([]any{"method", methodName, "event", "exit", "error", err}, args...)
	Error("← Method exited with error", allArgs...)
}

// DatabaseCall logs database operation (debug log for external resources)
func DatabaseCall(operation, query string, args ...any) {
	allArgs := append([]any{"operation", operation, "query", query}, args...)
	Debug("→ Database call", allArgs...)
}

// DatabaseResult logs database operation result (debug log for external resources)
func DatabaseResult(operation string, rowsAffected int64, err error, args ...any) {
	allArgs := append([]any{"operation", operation, "rows_affected", rowsAffected}, args...)
	if err != nil {
		allArgs = append(allArgs, "error", err)
		Error("← Database call failed", allArgs...)
	} else {
		Debug("← Database call succeeded", allArgs...)
	}
}

// ExternalServiceCall logs external service call (debug log for external resources)
func ExternalServiceCall(service, operation string, args ...any) {
	allArgs := append([]any{"service", service, "operation", operation}, args...)
	Debug("→ External service call", allArgs...)
}

// ExternalServiceResult logs external service result (debug log for external resources)
func ExternalServiceResult(service, operation string, err error, args ...any) {
	allArgs := append([]any{"service", service, "operation", operation}, args...)
	if err != nil {
		allArgs = append(allArgs, "error", err)
		Error("← External service call failed", allArgs...)
	} else {
		Debug("← External service call succeeded", allArgs...)
	}
}
