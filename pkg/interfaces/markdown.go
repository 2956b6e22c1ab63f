package interfaces

import (
	"context"
	"time"
)

// MarkdownParser converts raw Markdown bytes into HTML.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown rendering. Field names stay readable for
// configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// FrontMatter is the optional metadata block at the top of a course body.
// The course title and date always come from the file name; these fields
// carry presentation extras such as a summary or a video link.
type FrontMatter struct {
	Title      string         `yaml:"title" json:"title"`
	Summary    string         `yaml:"summary" json:"summary"`
	Tags       []string       `yaml:"tags" json:"tags"`
	Author     string         `yaml:"author" json:"author"`
	YouTubeURL string         `yaml:"youtube" json:"youtube"`
	Thumbnail  string         `yaml:"thumbnail" json:"thumbnail"`
	Date       time.Time      `yaml:"date" json:"date"`
	Draft      bool           `yaml:"draft" json:"draft"`
	Custom     map[string]any `yaml:",inline" json:"custom"`
}

// RenderedCourse pairs a course with its parsed front matter and HTML body.
type RenderedCourse struct {
	Course      Course      `json:"course"`
	FrontMatter FrontMatter `json:"front_matter"`
	Body        []byte      `json:"-"`
	HTML        []byte      `json:"-"`
}

// CourseRenderer turns an indexed course into displayable HTML.
type CourseRenderer interface {
	RenderCourse(ctx context.Context, course Course, opts ParseOptions) (*RenderedCourse, error)
}
