package courses

import (
	"context"

	index "github.com/goliatone/go-courses/internal/courses"
	"github.com/goliatone/go-courses/internal/di"
	"github.com/goliatone/go-courses/pkg/interfaces"
)

// Document exports the raw input record consumed by the indexer.
type Document = interfaces.Document

// Course exports the parsed course record.
type Course = interfaces.Course

// CategoryGroup exports a category and its sorted courses.
type CategoryGroup = interfaces.CategoryGroup

// IndexStats exports the counters of the last build.
type IndexStats = interfaces.IndexStats

// DocumentSource exports the document discovery contract.
type DocumentSource = interfaces.DocumentSource

// CourseIndex exports the read-only query contract.
type CourseIndex = interfaces.CourseIndex

// CourseRenderer exports the course rendering contract.
type CourseRenderer = interfaces.CourseRenderer

// RenderedCourse exports a course with its front matter and HTML.
type RenderedCourse = interfaces.RenderedCourse

// ParseOptions exports the Markdown renderer options.
type ParseOptions = interfaces.ParseOptions

// Indexer exports the concrete course index for callers that feed documents
// directly through Initialize.
type Indexer = index.Indexer

// IndexerOption configures an Indexer.
type IndexerOption = index.Option

// NewIndexer returns an empty indexer.
func NewIndexer(opts ...IndexerOption) *Indexer {
	return index.NewIndexer(opts...)
}

// Option customises module wiring.
type Option = di.Option

var (
	WithLoggerProvider  = di.WithLoggerProvider
	WithBunDB           = di.WithBunDB
	WithRepository      = di.WithRepository
	WithCache           = di.WithCache
	WithContentFS       = di.WithContentFS
	WithSource          = di.WithSource
	WithMarkdownParser  = di.WithMarkdownParser
	WithCommandRegistry = di.WithCommandRegistry
	WithCronRegistrar   = di.WithCronRegistrar
)

// Module represents the top level course runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a course module using the provided configuration and
// optional DI overrides. The index stays empty until Load.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Index returns the shared course index.
func (m *Module) Index() CourseIndex {
	return m.container.Indexer()
}

// Renderer returns the course renderer.
func (m *Module) Renderer() CourseRenderer {
	return m.container.Renderer()
}

// Load builds the index from the configured source.
func (m *Module) Load(ctx context.Context) error {
	return m.container.Load(ctx)
}

// Reload rebuilds the index, recording reason with the execution logs.
func (m *Module) Reload(ctx context.Context, reason string) error {
	return m.container.Reload(ctx, reason)
}

// Start begins watch and repository driven reloads.
func (m *Module) Start(ctx context.Context) error {
	return m.container.Start(ctx)
}

// Stop ends background reloads.
func (m *Module) Stop() error {
	return m.container.Stop()
}

// Render renders the course identified by category and id.
func (m *Module) Render(ctx context.Context, category, id string, opts ParseOptions) (*RenderedCourse, error) {
	course, ok := m.container.Indexer().ByID(category, id)
	if !ok {
		return nil, &CourseNotFoundError{Category: category, ID: id}
	}
	return m.container.Renderer().RenderCourse(ctx, course, opts)
}

// CourseNotFoundError reports a lookup for a course that is not indexed.
type CourseNotFoundError struct {
	Category string
	ID       string
}

func (e *CourseNotFoundError) Error() string {
	return "courses: course " + e.Category + "/" + e.ID + " not found"
}
