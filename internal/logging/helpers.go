package logging

import (
	"context"
	"maps"
	"sync"

	"github.com/goliatone/go-courses/pkg/interfaces"
)

// WithFields attaches fields when logger implements interfaces.FieldsLogger
// and returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}

	return logger
}

// Recorder is a logger that keeps every entry in memory. Tests use it to
// assert on emitted events without a real provider.
type Recorder struct {
	mu      sync.Mutex
	Entries []RecordedEntry
	fields  map[string]any
	parent  *Recorder
}

// RecordedEntry is a single captured log line.
type RecordedEntry struct {
	Level   string
	Message string
	Fields  map[string]any
	Args    []any
}

var (
	_ interfaces.Logger         = (*Recorder)(nil)
	_ interfaces.FieldsLogger   = (*Recorder)(nil)
	_ interfaces.LoggerProvider = (*Recorder)(nil)
)

func (r *Recorder) Trace(msg string, args ...any) { r.record("trace", msg, args) }
func (r *Recorder) Debug(msg string, args ...any) { r.record("debug", msg, args) }
func (r *Recorder) Info(msg string, args ...any)  { r.record("info", msg, args) }
func (r *Recorder) Warn(msg string, args ...any)  { r.record("warn", msg, args) }
func (r *Recorder) Error(msg string, args ...any) { r.record("error", msg, args) }
func (r *Recorder) Fatal(msg string, args ...any) { r.record("fatal", msg, args) }

// GetLogger returns the recorder itself so it can stand in for a provider.
func (r *Recorder) GetLogger(string) interfaces.Logger { return r }

func (r *Recorder) WithFields(fields map[string]any) interfaces.Logger {
	merged := maps.Clone(r.fields)
	if merged == nil {
		merged = map[string]any{}
	}
	maps.Copy(merged, fields)
	return &Recorder{fields: merged, parent: r.root()}
}

func (r *Recorder) WithContext(ctx context.Context) interfaces.Logger {
	if fields := ContextFields(ctx); len(fields) > 0 {
		return r.WithFields(fields)
	}
	return r
}

// Messages lists recorded messages in order.
func (r *Recorder) Messages() []string {
	root := r.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	out := make([]string, 0, len(root.Entries))
	for _, entry := range root.Entries {
		out = append(out, entry.Message)
	}
	return out
}

func (r *Recorder) root() *Recorder {
	if r.parent != nil {
		return r.parent
	}
	return r
}

func (r *Recorder) record(level, msg string, args []any) {
	root := r.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.Entries = append(root.Entries, RecordedEntry{
		Level:   level,
		Message: msg,
		Fields:  maps.Clone(r.fields),
		Args:    append([]any(nil), args...),
	})
}
