package courses

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-courses/internal/identity"
	"github.com/goliatone/go-courses/internal/logging"
	"github.com/goliatone/go-courses/pkg/interfaces"
)

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets the logger that mirrors diagnostic entries.
func WithLogger(logger interfaces.Logger) Option {
	return func(ix *Indexer) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// Indexer holds the category-partitioned course index. A build replaces the
// whole snapshot, so readers see either the previous or the new state.
type Indexer struct {
	logger interfaces.Logger

	mu       sync.RWMutex
	snapshot *snapshot
}

var _ interfaces.CourseIndex = (*Indexer)(nil)

type snapshot struct {
	groups      []interfaces.CategoryGroup
	diagnostics []string
	failures    []error
	stats       interfaces.IndexStats
}

// NewIndexer returns an empty indexer.
func NewIndexer(opts ...Option) *Indexer {
	ix := &Indexer{
		logger:   logging.NoOp(),
		snapshot: &snapshot{},
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Load discovers documents from source and rebuilds the index. A discovery
// error leaves the previous index in place.
func (ix *Indexer) Load(ctx context.Context, source interfaces.DocumentSource) error {
	if source == nil {
		return fmt.Errorf("courses: document source is nil")
	}
	docs, err := source.ListDocuments(ctx)
	if err != nil {
		ix.logger.Error("courses.indexer.discovery.failed", "error", err)
		return fmt.Errorf("courses: list documents: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	pattern := ""
	if ps, ok := source.(interfaces.PatternSource); ok {
		pattern = ps.SearchPattern()
	}
	ix.build(docs, pattern)
	return nil
}

// Initialize discards the current index and rebuilds it from docs.
// Per-document failures are recorded in the diagnostic log and skipped.
func (ix *Indexer) Initialize(docs []interfaces.Document) {
	ix.build(docs, "")
}

func (ix *Indexer) build(docs []interfaces.Document, pattern string) {
	b := &builder{logger: ix.logger, positions: map[string]int{}, slugs: map[string]bool{}}
	if pattern != "" {
		b.trace("Searching for files with pattern: " + pattern)
	}
	b.trace(fmt.Sprintf("Found %d markdown files.", len(docs)))

	for _, doc := range docs {
		b.add(doc)
	}
	next := b.finish(len(docs))

	ix.mu.Lock()
	ix.snapshot = next
	ix.mu.Unlock()

	ix.logger.Info("courses.indexer.initialized",
		"documents", next.stats.Documents,
		"indexed", next.stats.Indexed,
		"skipped", next.stats.Skipped,
		"categories", next.stats.Categories,
	)
}

// AllCategories returns every category group in first-seen order.
func (ix *Indexer) AllCategories() []interfaces.CategoryGroup {
	snap := ix.current()
	out := make([]interfaces.CategoryGroup, len(snap.groups))
	for i, group := range snap.groups {
		out[i] = cloneGroup(group)
	}
	return out
}

// ByCategory returns the sorted courses of an exact category match, or an
// empty slice.
func (ix *Indexer) ByCategory(category string) []interfaces.Course {
	snap := ix.current()
	for _, group := range snap.groups {
		if group.Category == category {
			return slices.Clone(group.Courses)
		}
	}
	return []interfaces.Course{}
}

// All returns every course in category order, then id order.
func (ix *Indexer) All() []interfaces.Course {
	snap := ix.current()
	out := make([]interfaces.Course, 0, snap.stats.Indexed)
	for _, group := range snap.groups {
		out = append(out, group.Courses...)
	}
	return out
}

// DiagnosticLog returns the trace of the most recent build.
func (ix *Indexer) DiagnosticLog() []string {
	return slices.Clone(ix.current().diagnostics)
}

// Failures returns the per-document errors of the most recent build. Each
// error carries the go-errors validation category and a text code.
func (ix *Indexer) Failures() []error {
	return slices.Clone(ix.current().failures)
}

// Stats summarises the most recent build.
func (ix *Indexer) Stats() interfaces.IndexStats {
	return ix.current().stats
}

// ByID looks a course up by category and id.
func (ix *Indexer) ByID(category, id string) (interfaces.Course, bool) {
	for _, course := range ix.ByCategory(category) {
		if course.ID == id {
			return course, true
		}
	}
	return interfaces.Course{}, false
}

// ByUUID looks a course up by the UUID derived from its document path.
func (ix *Indexer) ByUUID(id uuid.UUID) (interfaces.Course, bool) {
	if id == uuid.Nil {
		return interfaces.Course{}, false
	}
	snap := ix.current()
	for _, group := range snap.groups {
		for _, course := range group.Courses {
			if course.UUID == id {
				return course, true
			}
		}
	}
	return interfaces.Course{}, false
}

// CategoryBySlug finds a category group by its URL slug. Slugs are unique
// within a build.
func (ix *Indexer) CategoryBySlug(value string) (interfaces.CategoryGroup, bool) {
	if value == "" {
		return interfaces.CategoryGroup{}, false
	}
	snap := ix.current()
	for _, group := range snap.groups {
		if group.Slug == value {
			return cloneGroup(group), true
		}
	}
	return interfaces.CategoryGroup{}, false
}

func (ix *Indexer) current() *snapshot {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.snapshot
}

type builder struct {
	logger      interfaces.Logger
	groups      []interfaces.CategoryGroup
	positions   map[string]int
	slugs       map[string]bool
	diagnostics []string
	failures    []error
}

func (b *builder) trace(entry string) {
	b.diagnostics = append(b.diagnostics, entry)
	b.logger.Debug("courses.indexer.trace", "entry", entry)
}

func (b *builder) add(doc interfaces.Document) {
	course, err := ParseDocument(doc)
	if err != nil {
		b.trace(fmt.Sprintf("Error processing file %s: %v", doc.Path, err))
		b.failures = append(b.failures, wrapDocumentError(doc.Path, err))
		logging.WithCourseContext(b.logger, doc.Path, "", "").
			Warn("courses.indexer.document.skipped", "error", err)
		return
	}
	course.UUID = identity.DocumentUUID(doc.Path)

	b.trace("Processed file: " + doc.Path)
	b.trace(fmt.Sprintf("- ID: %s, Title: %s, Category: %s", course.ID, course.Title, course.Category))
	b.trace("- Datetime: " + course.Datetime)
	b.trace(fmt.Sprintf("- Content length: %d characters", utf8.RuneCountInString(course.Content)))

	pos, ok := b.positions[course.Category]
	if !ok {
		pos = len(b.groups)
		b.positions[course.Category] = pos
		b.groups = append(b.groups, interfaces.CategoryGroup{
			Category: course.Category,
			Slug:     b.uniqueSlug(course.Category),
		})
	}
	b.groups[pos].Courses = append(b.groups[pos].Courses, course)
}

func (b *builder) finish(total int) *snapshot {
	indexed := 0
	for i := range b.groups {
		slices.SortStableFunc(b.groups[i].Courses, func(x, y interfaces.Course) int {
			return compareIDs(x.ID, y.ID)
		})
		indexed += len(b.groups[i].Courses)
	}

	b.trace(fmt.Sprintf("Processed %d categories.", len(b.groups)))
	for _, group := range b.groups {
		b.trace(fmt.Sprintf("- %s: %d courses", group.Category, len(group.Courses)))
	}

	return &snapshot{
		groups:      b.groups,
		diagnostics: b.diagnostics,
		failures:    b.failures,
		stats: interfaces.IndexStats{
			Documents:  total,
			Indexed:    indexed,
			Skipped:    total - indexed,
			Categories: len(b.groups),
		},
	}
}

// uniqueSlug suffixes the slug of a category whose name only differs from an
// earlier one in case or punctuation ("Web" and "web" become "web" and "web-2").
func (b *builder) uniqueSlug(category string) string {
	base := categorySlug(category)
	if base == "" {
		return ""
	}
	candidate := base
	for n := 2; b.slugs[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	b.slugs[candidate] = true
	return candidate
}

func categorySlug(category string) string {
	normalized, err := slug.Normalize(category)
	if err != nil {
		return ""
	}
	return normalized
}

func cloneGroup(group interfaces.CategoryGroup) interfaces.CategoryGroup {
	group.Courses = slices.Clone(group.Courses)
	return group
}
