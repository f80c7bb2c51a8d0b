package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log call. Attributes from Logger.With are
// merged in; groups become dotted keys ("req.status").
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type logStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// LogCapture is an slog.Handler that keeps every record in memory and echoes
// it to t.Log. Loggers derived with With/WithGroup share the same store.
type LogCapture struct {
	store  *logStore
	attrs  map[string]any
	prefix string
	t      *testing.T
}

// NewTestLogger returns a logger at debug level and the capture behind it.
func NewTestLogger(t *testing.T) (*slog.Logger, *LogCapture) {
	capture := &LogCapture{store: &logStore{}, t: t}
	return slog.New(capture), capture
}

func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(c.attrs)+r.NumAttrs())
	for k, v := range c.attrs {
		attrs[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[c.prefix+a.Key] = a.Value.Any()
		return true
	})

	c.store.mu.Lock()
	c.store.records = append(c.store.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	c.store.mu.Unlock()

	if c.t != nil {
		c.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *c
	next.attrs = make(map[string]any, len(c.attrs)+len(attrs))
	for k, v := range c.attrs {
		next.attrs[k] = v
	}
	for _, a := range attrs {
		next.attrs[c.prefix+a.Key] = a.Value.Any()
	}
	return &next
}

func (c *LogCapture) WithGroup(name string) slog.Handler {
	next := *c
	next.prefix = c.prefix + name + "."
	return &next
}

// Records returns a snapshot of everything logged so far.
func (c *LogCapture) Records() []LogRecord {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return append([]LogRecord(nil), c.store.records...)
}

// AtLevel returns the records logged at exactly level.
func (c *LogCapture) AtLevel(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, r := range c.Records() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// Last returns the most recent record whose message is exactly message.
func (c *LogCapture) Last(message string) (LogRecord, bool) {
	records := c.Records()
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Message == message {
			return records[i], true
		}
	}
	return LogRecord{}, false
}

// ContainsMessage reports whether any message contains substr.
func (c *LogCapture) ContainsMessage(substr string) bool {
	for _, r := range c.Records() {
		if strings.Contains(r.Message, substr) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any record has key set to value.
func (c *LogCapture) ContainsAttr(key string, value any) bool {
	for _, r := range c.Records() {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// AssertLogContains fails t unless a record at level contains message.
func AssertLogContains(t *testing.T, capture *LogCapture, level slog.Level, message string) {
	t.Helper()

	records := capture.AtLevel(level)
	for _, r := range records {
		if strings.Contains(r.Message, message) {
			return
		}
	}
	t.Errorf("no %s log containing %q", level, message)
	for _, r := range records {
		t.Logf("  - %s", r.Message)
	}
}
