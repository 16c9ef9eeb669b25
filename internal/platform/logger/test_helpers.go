package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// TestLogBuffer is an io.Writer that collects JSON log lines and is safe for
// use by worker goroutines while a test inspects it.
type TestLogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (b *TestLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything logged so far.
func (b *TestLogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Entries decodes every logged line. Lines that are not JSON fail the test.
func (b *TestLogBuffer) Entries(t testing.TB) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range strings.Split(b.String(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %v\n%s", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

// Find returns the first entry whose message is msg.
func (b *TestLogBuffer) Find(t testing.TB, msg string) (map[string]any, bool) {
	t.Helper()

	for _, entry := range b.Entries(t) {
		if entry[slog.MessageKey] == msg {
			return entry, true
		}
	}
	return nil, false
}

// AssertLogged fails the test unless an entry with message msg carries every
// attribute in attrs. Numbers compare as float64, as encoding/json decodes them.
func AssertLogged(t testing.TB, buf *TestLogBuffer, msg string, attrs map[string]any) {
	t.Helper()

	entry, ok := buf.Find(t, msg)
	if !ok {
		t.Errorf("no log entry with message %q\nlogs:\n%s", msg, buf.String())
		return
	}
	for key, want := range attrs {
		if got := entry[key]; got != want {
			t.Errorf("log entry %q: %s = %v, want %v", msg, key, got, want)
		}
	}
}

// NewTestLogger returns a debug level JSON logger writing to a fresh buffer,
// and a context carrying that logger.
func NewTestLogger(t testing.TB) (context.Context, *slog.Logger, *TestLogBuffer) {
	t.Helper()

	buf := &TestLogBuffer{}
	l := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return WithLogger(context.Background(), l), l, buf
}
