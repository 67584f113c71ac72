// Package eventstream is the sink for mailbox diagnostics that are not
// themselves errors returned to a caller — chiefly, dead-letter
// forwarding failures observed during close-time drain.
//
// It wraps github.com/joeycumines/logiface, using the
// github.com/joeycumines/logiface-slog adapter to write through the
// standard library's log/slog, the same structured-logging shape the rest
// of the pack uses rather than a bespoke logger type.
package eventstream

import (
	"log/slog"
	"os"

	"github.com/joeycumines/logiface"
	logifaceslog "github.com/joeycumines/logiface-slog"
)

// Logger is a thin, nil-safe facade over a logiface.Logger[*logifaceslog.Event].
// Every mailbox, dispatcher, and engine accepts a *Logger via its
// constructor, rather than reaching for a package-level global.
type Logger struct {
	inner *logiface.Logger[*logifaceslog.Event]
}

// New wraps handler in a Logger. A nil handler defaults to a
// slog.NewTextHandler writing to os.Stderr.
func New(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	return &Logger{inner: logiface.New[*logifaceslog.Event](logifaceslog.NewLogger(handler))}
}

// discard is the zero-cost sink OrDiscard falls back to.
var discard = &Logger{}

// OrDiscard returns l if non-nil, otherwise a Logger that drops every
// event. Every component in this module calls this instead of checking
// for a nil *Logger at each call site.
func OrDiscard(l *Logger) *Logger {
	if l == nil {
		return discard
	}
	return l
}

func (l *Logger) fields(b *logiface.Builder[*logifaceslog.Event], kv []any) *logiface.Builder[*logifaceslog.Event] {
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		b = b.Any(key, kv[i+1])
	}
	return b
}

// Error logs msg at error level with the given alternating key/value pairs.
func (l *Logger) Error(msg string, kv ...any) {
	if l.inner == nil {
		return
	}
	l.fields(l.inner.Build(logiface.LevelError), kv).Log(msg)
}

// Warn logs msg at warning level with the given alternating key/value pairs.
func (l *Logger) Warn(msg string, kv ...any) {
	if l.inner == nil {
		return
	}
	l.fields(l.inner.Warning(), kv).Log(msg)
}

// Info logs msg at informational level with the given alternating
// key/value pairs.
func (l *Logger) Info(msg string, kv ...any) {
	if l.inner == nil {
		return
	}
	l.fields(l.inner.Info(), kv).Log(msg)
}
