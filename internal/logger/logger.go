// Package logger wraps zerolog for the sidecar.
//
// Standard output is reserved for the single response envelope, so every
// logger built here writes JSON lines to standard error (or a caller-supplied
// writer in tests).
package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// DefaultLevel is used until configuration has been resolved.
const DefaultLevel = zerolog.WarnLevel

// Logger is a thin wrapper around zerolog.Logger.
// Embedding exposes the full zerolog API on *Logger.
type Logger struct {
	zerolog.Logger
}

// New builds a logger writing to w at the given level, tagged with the
// invocation identifier of this process run.
func New(w io.Writer, level zerolog.Level, invocationID string) *Logger {
	l := zerolog.New(w).Level(level).With().
		Timestamp().
		Str("invocation_id", invocationID).
		Logger()

	return &Logger{l}
}

// ParseLevel converts a configured level name; the empty string is warn.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.WarnLevel, nil
	}
	return zerolog.ParseLevel(name)
}

// Nop returns a *Logger that discards all output.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// WithField returns a child logger carrying an extra string field.
func (l *Logger) WithField(key, value string) *Logger {
	return &Logger{l.Logger.With().Str(key, value).Logger()}
}
