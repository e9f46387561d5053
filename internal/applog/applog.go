// Package applog wraps zerolog the way the ambient logging stack this
// module is grounded on does: a thin *Logger embedding zerolog.Logger,
// built with functional options, JSON lines on stderr by default.
//
// The desensitization-hook and rotating-file-writer machinery the teacher's
// logging package carries is not ported here — a single-operator CLI
// talking to one card at a time has no multi-tenant PII to redact and no
// long-lived daemon process to rotate logs under; see DESIGN.md.
package applog

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// Logger is the structured logger every package in cmd/nfcauth is handed.
type Logger struct {
	zerolog.Logger
}

// Option configures a Logger at construction time.
type Option func(*Logger)

// WithLevel sets the minimum level this logger emits.
func WithLevel(level zerolog.Level) Option {
	return func(l *Logger) {
		l.Logger = l.Logger.Level(level)
	}
}

// WithCaller attaches the calling file:line to every event.
func WithCaller() Option {
	return func(l *Logger) {
		l.Logger = l.Logger.With().Caller().Logger()
	}
}

// WithCorrelationID attaches a fixed correlation id field, set once per
// operation from orchestrator.Result.CorrelationID or a freshly minted one
// before the pipeline runs.
func WithCorrelationID(id string) Option {
	return func(l *Logger) {
		l.Logger = l.Logger.With().Str("correlation_id", id).Logger()
	}
}

// New builds a Logger writing to stderr.
func New(opts ...Option) *Logger {
	l := &Logger{Logger: zerolog.New(os.Stderr).With().Timestamp().Logger()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LevelFromString parses a level name, defaulting to info on an unknown or
// empty string rather than erroring — a misconfigured log level should
// never be the reason an operation can't run.
func LevelFromString(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
