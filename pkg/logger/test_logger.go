package logger

import "sync"

// TestEntry is one captured log call.
type TestEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// TestLogger captures log entries for assertions in tests.
type TestLogger struct {
	mu      sync.Mutex
	fields  map[string]interface{}
	entries *[]TestEntry
}

// NewTestLogger creates a logger that records every entry.
func NewTestLogger() *TestLogger {
	entries := make([]TestEntry, 0)
	return &TestLogger{
		fields:  make(map[string]interface{}),
		entries: &entries,
	}
}

// Entries returns a copy of everything logged so far.
func (t *TestLogger) Entries() []TestEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TestEntry, len(*t.entries))
	copy(out, *t.entries)
	return out
}

func (t *TestLogger) record(level, msg string, fields map[string]interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	merged := make(map[string]interface{}, len(t.fields)+len(fields))
	for k, v := range t.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	*t.entries = append(*t.entries, TestEntry{Level: level, Message: msg, Fields: merged})
}

func (t *TestLogger) child(fields map[string]interface{}) *TestLogger {
	t.mu.Lock()
	defer t.mu.Unlock()

	merged := make(map[string]interface{}, len(t.fields)+len(fields))
	for k, v := range t.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{fields: merged, entries: t.entries}
}

func (t *TestLogger) Debug(msg string) { t.record("debug", msg, nil) }
func (t *TestLogger) Info(msg string)  { t.record("info", msg, nil) }
func (t *TestLogger) Warn(msg string)  { t.record("warn", msg, nil) }
func (t *TestLogger) Error(msg string) { t.record("error", msg, nil) }
func (t *TestLogger) Fatal(msg string) { t.record("fatal", msg, nil) }

func (t *TestLogger) WithField(key string, value interface{}) Logger {
	return t.child(map[string]interface{}{key: value})
}

func (t *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return t.child(fields)
}

func (t *TestLogger) WithError(err error) Logger {
	return t.child(map[string]interface{}{"error": err})
}

func (t *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	t.record("debug", msg, fields)
}

func (t *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	t.record("info", msg, fields)
}

func (t *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	t.record("warn", msg, fields)
}

func (t *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	t.record("error", msg, fields)
}
