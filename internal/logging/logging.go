// Package logging provides the structured logger every step, connector,
// and CLI command writes through. The interface keeps the teacher's
// Debug/Info/Warning/Error shape (crawler.go's Logger), backed by
// zerolog instead of the teacher's plain log.Logger so that level
// filtering, field attachment, and JSON output come for free.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the contract every package logs through. Grounded on the
// teacher's crawler.go Logger interface (Debug/Info/Warning/Error with
// Printf-style args); With mirrors the structured-field pattern used for
// per-component loggers across the pack.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warning(msg string, args ...any)
	Error(msg string, args ...any)
	With(key string, value any) Logger
}

type zlogger struct {
	zl zerolog.Logger
}

// Options configures a Logger built with New.
type Options struct {
	Writer io.Writer
	Level  string // "debug", "info", "warn", "error"; default "info"
	Pretty bool   // human-readable console output instead of JSON
}

// New builds a Logger from Options, defaulting to JSON on stderr at info
// level (spec.md's ambient logging concern: every pipeline run must emit
// structured, machine-parseable diagnostics by default).
func New(opts Options) (Logger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		level = parsed
	}

	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &zlogger{zl: zl}, nil
}

// NewNop returns a Logger that discards everything, for tests and for
// callers that never configured a logger.
func NewNop() Logger {
	return &zlogger{zl: zerolog.Nop()}
}

func (l *zlogger) Debug(msg string, args ...any)   { l.zl.Debug().Msg(format(msg, args)) }
func (l *zlogger) Info(msg string, args ...any)    { l.zl.Info().Msg(format(msg, args)) }
func (l *zlogger) Warning(msg string, args ...any) { l.zl.Warn().Msg(format(msg, args)) }
func (l *zlogger) Error(msg string, args ...any)   { l.zl.Error().Msg(format(msg, args)) }

func (l *zlogger) With(key string, value any) Logger {
	return &zlogger{zl: l.zl.With().Interface(key, value).Logger()}
}

func format(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
