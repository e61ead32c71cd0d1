// Package logging provides structured logging for the tray app and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const timeFormat = "15:04:05"

// Logger wraps zerolog with the console formatting used across lockbar.
type Logger struct {
	zlog   zerolog.Logger
	output io.Writer
}

// New creates a logger writing human-readable lines to w.
func New(w io.Writer) *Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: timeFormat,
	}
	return &Logger{
		zlog:   zerolog.New(output).With().Timestamp().Logger(),
		output: output,
	}
}

// NewWithFile logs to stderr and, without colors, to file.
func NewWithFile(file io.Writer) *Logger {
	output := zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: timeFormat},
		zerolog.ConsoleWriter{Out: file, TimeFormat: time.RFC3339, NoColor: true},
	)
	return &Logger{
		zlog:   zerolog.New(output).With().Timestamp().Logger(),
		output: output,
	}
}

// NewDefault creates a stderr logger.
func NewDefault() *Logger {
	return New(os.Stderr)
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop(), output: io.Discard}
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{
		zlog:   l.zlog.With().Str("component", name).Logger(),
		output: l.output,
	}
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Fatal returns a fatal level event. Msg exits the process.
func (l *Logger) Fatal() *zerolog.Event {
	return l.zlog.Fatal()
}

// With creates a child logger context.
func (l *Logger) With() zerolog.Context {
	return l.zlog.With()
}

// Output returns the writer the logger formats into.
func (l *Logger) Output() io.Writer {
	return l.output
}

// ParseLevel parses a level name such as "debug" or "warn". The empty name
// means info.
func ParseLevel(name string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return level, nil
}

// SetLevel sets the global level from a name such as "debug" or "warn".
func SetLevel(name string) error {
	level, err := ParseLevel(name)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
