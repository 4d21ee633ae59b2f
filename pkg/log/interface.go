// Package log provides structured logging for softmaxloss.
//
// Logger is a small slog-compatible interface; the default implementation is
// backed by zerolog (see ZerologLogger) and a TestLogger captures records in
// memory for assertions. Attribute keys live in attributes.go so every
// package emits the same field names.
//
//	logger := log.GetLoggerWithName("softmax").With(log.VariantKey, log.VariantVectorized)
//	logger.Debug("loss computed",
//	    log.OperationKey, log.OperationLoss,
//	    log.SamplesKey, 500,
//	    log.FeaturesKey, 3073,
//	)
package log

import (
	"context"
)

// Logger is a structured logger taking alternating key/value fields.
type Logger interface {
	// Debug logs diagnostic detail, such as per-call loss records.
	Debug(msg string, fields ...any)

	// Info logs normal progress.
	Info(msg string, fields ...any)

	// Warn logs a recoverable problem, for example a non-finite loss:
	//   logger.Warn("non-finite loss", log.LossKey, math.NaN())
	Warn(msg string, fields ...any)

	// Error logs a failure. When the first field is an error it is attached
	// together with its stack trace and the rest are key/value pairs:
	//   logger.Error("loss computation failed", err, log.OperationKey, log.OperationLoss)
	Error(msg string, fields ...any)

	// With returns a logger that adds fields to every record.
	With(fields ...any) Logger

	// Enabled reports whether a record at level would be emitted. Use it to
	// skip building expensive fields.
	Enabled(ctx context.Context, level Level) bool
}

// Level is a logging level with the same numeric values as slog.Level.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates loggers that share one output and level.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
	SetLevel(level Level)
}
