package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// zerologLogger adapts a zerolog.Logger to the printf-style Logger interface.
type zerologLogger struct {
	log zerolog.Logger
}

// NewZerolog returns a Logger backed by zerolog writing to w.
// An unknown level falls back to info. With json false, output goes through
// zerolog's console writer for human readers.
func NewZerolog(w io.Writer, level string, json bool) Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if !json {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return &zerologLogger{
		log: zerolog.New(out).Level(lvl).With().Timestamp().Logger(),
	}
}

// WithComponent returns a child logger that tags every message with a
// component field, or l unchanged if it is not zerolog backed.
func WithComponent(l Logger, component string) Logger {
	zl, ok := l.(*zerologLogger)
	if !ok {
		return l
	}
	return &zerologLogger{log: zl.log.With().Str("component", component).Logger()}
}

func (l *zerologLogger) Debug(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

func (l *zerologLogger) Info(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

func (l *zerologLogger) Warn(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

func (l *zerologLogger) Error(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}
