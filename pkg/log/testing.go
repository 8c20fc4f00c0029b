package log

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

// Entry is one record captured by TestLogger.
type Entry struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// TestLogger はテスト用の Logger 実装です。
// ログをメモリに保持し、メッセージやフィールドを後から検証できます。
// With で派生したロガーも同じ記録先を共有します。
type TestLogger struct {
	sink   *entrySink
	level  Level
	fields map[string]any
}

type entrySink struct {
	mu      sync.Mutex
	entries []Entry
}

// NewTestLogger creates a TestLogger that keeps records at or above level.
func NewTestLogger(level Level) *TestLogger {
	return &TestLogger{sink: &entrySink{}, level: level, fields: map[string]any{}}
}

// CaptureLogs installs a TestLogger as the package-wide logger for the
// duration of t and restores the previous logger on cleanup.
//
//	logs := log.CaptureLogs(t, log.LevelDebug)
//	_, _ = dataset.LoadData(path)
//	assert.True(t, logs.ContainsField(log.SamplesKey, 569))
func CaptureLogs(t testing.TB, level Level) *TestLogger {
	t.Helper()
	tl := NewTestLogger(level)
	prev := SetLogger(tl)
	t.Cleanup(func() { SetLogger(prev) })
	return tl
}

func (t *TestLogger) Debug(msg string, fields ...any) { t.record(LevelDebug, msg, fields) }
func (t *TestLogger) Info(msg string, fields ...any)  { t.record(LevelInfo, msg, fields) }
func (t *TestLogger) Warn(msg string, fields ...any)  { t.record(LevelWarn, msg, fields) }

// Error は slogLogger と同様に先頭の error を ErrAttrKey として記録します。
func (t *TestLogger) Error(msg string, fields ...any) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{ErrAttrKey, err}, fields[1:]...)
		}
	}
	t.record(LevelError, msg, fields)
}

// With implements Logger.With.
func (t *TestLogger) With(fields ...any) Logger {
	return &TestLogger{sink: t.sink, level: t.level, fields: mergeFields(t.fields, fields)}
}

// Enabled implements Logger.Enabled.
func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	return t.level <= level
}

func (t *TestLogger) record(level Level, msg string, fields []any) {
	if level < t.level {
		return
	}
	e := Entry{Level: level, Message: msg, Fields: mergeFields(t.fields, fields)}
	t.sink.mu.Lock()
	t.sink.entries = append(t.sink.entries, e)
	t.sink.mu.Unlock()
}

// mergeFields copies base and adds the key/value pairs of kv. Errors are
// stored as their message; a trailing key without a value is dropped.
func mergeFields(base map[string]any, kv []any) map[string]any {
	out := make(map[string]any, len(base)+len(kv)/2)
	for k, v := range base {
		out[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		v := kv[i+1]
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		out[fmt.Sprint(kv[i])] = v
	}
	return out
}

// Entries returns a snapshot of the captured records in call order.
func (t *TestLogger) Entries() []Entry {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	out := make([]Entry, len(t.sink.entries))
	copy(out, t.sink.entries)
	return out
}

// Find returns the first record whose message equals msg.
func (t *TestLogger) Find(msg string) (Entry, bool) {
	for _, e := range t.Entries() {
		if e.Message == msg {
			return e, true
		}
	}
	return Entry{}, false
}

// ContainsMessage reports whether a record with message msg was captured.
func (t *TestLogger) ContainsMessage(msg string) bool {
	_, ok := t.Find(msg)
	return ok
}

// ContainsField reports whether any record carries key with exactly value.
func (t *TestLogger) ContainsField(key string, value any) bool {
	for _, e := range t.Entries() {
		if v, ok := e.Fields[key]; ok && reflect.DeepEqual(v, value) {
			return true
		}
	}
	return false
}

// Clear drops every captured record.
func (t *TestLogger) Clear() {
	t.sink.mu.Lock()
	t.sink.entries = nil
	t.sink.mu.Unlock()
}
