package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-courses/pkg/interfaces"
)

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "courses.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger.Debug("noop")
}

func TestModuleLoggerAnnotatesModuleField(t *testing.T) {
	rec := &Recorder{}
	provider := &stubProvider{logger: rec}

	logger := IndexerLogger(provider)
	logger.Info("courses.indexer.started")

	if len(provider.requested) != 1 || provider.requested[0] != indexerModule {
		t.Fatalf("expected module %s, got %v", indexerModule, provider.requested)
	}
	if len(rec.Entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(rec.Entries))
	}
	if got := rec.Entries[0].Fields["module"]; got != indexerModule {
		t.Fatalf("expected module field %s, got %v", indexerModule, got)
	}
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	provider := &stubProvider{logger: &Recorder{}}
	_ = ModuleLogger(provider, "")

	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestWithCourseContextSkipsEmptyValues(t *testing.T) {
	rec := &Recorder{}
	WithCourseContext(rec, " web/1.20240101000000.Intro.md ", "", "1").Warn("skipped")

	fields := rec.Entries[0].Fields
	if fields[fieldDocumentPath] != "web/1.20240101000000.Intro.md" {
		t.Fatalf("expected trimmed path, got %v", fields[fieldDocumentPath])
	}
	if _, ok := fields[fieldCategory]; ok {
		t.Fatalf("expected empty category to be skipped, got %v", fields)
	}
	if fields[fieldCourseID] != "1" {
		t.Fatalf("expected course id field, got %v", fields[fieldCourseID])
	}
}

func TestContextWithFieldsMerges(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"a": 1})
	ctx = ContextWithFields(ctx, map[string]any{"b": 2})

	fields := ContextFields(ctx)
	if fields["a"] != 1 || fields["b"] != 2 {
		t.Fatalf("expected merged fields, got %v", fields)
	}
	fields["a"] = 99
	if ContextFields(ctx)["a"] != 1 {
		t.Fatal("expected ContextFields to return a copy")
	}
}
