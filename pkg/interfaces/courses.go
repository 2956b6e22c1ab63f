package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// Document is a raw content unit handed to the indexer. Path is the storage
// identifier, structured as <category>/<id>.<YYYYMMDDhhmmss>.<title>.md; any
// leading segments before the category are ignored.
type Document struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Course is the structured record parsed out of a single Document.
type Course struct {
	ID       string    `json:"id"`
	Datetime string    `json:"datetime"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Content  string    `json:"content"`
	Path     string    `json:"path"`
	UUID     uuid.UUID `json:"uuid"`
}

// CategoryGroup holds every course sharing one category, sorted by numeric id.
type CategoryGroup struct {
	Category string   `json:"category"`
	Slug     string   `json:"slug"`
	Courses  []Course `json:"courses"`
}

// IndexStats summarises the most recent index build.
type IndexStats struct {
	Documents  int `json:"documents"`
	Indexed    int `json:"indexed"`
	Skipped    int `json:"skipped"`
	Categories int `json:"categories"`
}

// DocumentSource discovers the documents to index. Implementations include
// filesystem walks, embedded assets and database-backed repositories.
type DocumentSource interface {
	ListDocuments(ctx context.Context) ([]Document, error)
}

// PatternSource is a DocumentSource that can report the glob it searches.
// The indexer records the pattern as the first diagnostic entry.
type PatternSource interface {
	DocumentSource
	SearchPattern() string
}

// CourseIndex is the read side of the indexer consumed by views and handlers.
type CourseIndex interface {
	AllCategories() []CategoryGroup
	ByCategory(category string) []Course
	All() []Course
	DiagnosticLog() []string
	ByID(category, id string) (Course, bool)
	ByUUID(id uuid.UUID) (Course, bool)
	CategoryBySlug(slug string) (CategoryGroup, bool)
	Stats() IndexStats
}
