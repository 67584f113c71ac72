package eventstream

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerWritesThroughSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.NewTextHandler(&buf, nil))

	l.Error("something failed", "actor", "pid-1")

	out := buf.String()
	if !strings.Contains(out, "something failed") {
		t.Fatalf("log output %q missing message", out)
	}
	if !strings.Contains(out, "pid-1") {
		t.Fatalf("log output %q missing field value", out)
	}
}

func TestOrDiscardHandlesNil(t *testing.T) {
	l := OrDiscard(nil)
	// Must not panic even though it drops every event.
	l.Error("dropped")
	l.Warn("dropped")
	l.Info("dropped")
}

func TestOrDiscardPassesThroughNonNil(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.NewTextHandler(&buf, nil))
	if OrDiscard(l) != l {
		t.Fatal("OrDiscard must return the same Logger when non-nil")
	}
}
