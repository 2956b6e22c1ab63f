package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-courses/pkg/interfaces"
)

const (
	rootModule       = "courses"
	indexerModule    = "courses.indexer"
	sourcesModule    = "courses.sources"
	repositoryModule = "courses.repository"
	renderModule     = "courses.render"
	watchModule      = "courses.watch"
)

const (
	fieldDocumentPath = "document_path"
	fieldCategory     = "category"
	fieldCourseID     = "course_id"
)

// ModuleLogger returns a module-scoped logger, falling back to a no-op when
// provider is nil. The module name is attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// IndexerLogger returns the logger namespace reserved for the course indexer.
func IndexerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, indexerModule)
}

// SourcesLogger returns the logger namespace reserved for document discovery.
func SourcesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sourcesModule)
}

// RepositoryLogger returns the logger namespace reserved for document repositories.
func RepositoryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, repositoryModule)
}

// RenderLogger returns the logger namespace reserved for markdown rendering.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// WatchLogger returns the logger namespace reserved for the content watcher.
func WatchLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, watchModule)
}

// WithCourseContext enriches logger with the document path, category and
// course id. Empty values are skipped.
func WithCourseContext(logger interfaces.Logger, path, category, id string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldDocumentPath] = trimmed
	}
	if trimmed := strings.TrimSpace(category); trimmed != "" {
		fields[fieldCategory] = trimmed
	}
	if trimmed := strings.TrimSpace(id); trimmed != "" {
		fields[fieldCourseID] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
