// Package logging defines the leveled logger consumed by the library
// packages. The core never logs through a concrete implementation so it
// stays usable headlessly; callers that want output pass New(...).
package logging

import (
	"io"

	charm "github.com/charmbracelet/log"
)

// Logger accepts four severity levels. Key-value pairs follow the message.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// Nop returns a logger that discards everything. It is the default for
// every entry point that takes an optional Logger.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// New creates a charmbracelet-backed logger writing to w.
// verbose lowers the threshold to debug.
func New(w io.Writer, verbose bool) Logger {
	level := charm.WarnLevel
	if verbose {
		level = charm.DebugLevel
	}
	l := charm.NewWithOptions(w, charm.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	return charmLogger{l}
}

type charmLogger struct{ l *charm.Logger }

func (c charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }
