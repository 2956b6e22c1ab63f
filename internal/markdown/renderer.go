package markdown

import (
	"context"
	"fmt"

	"github.com/goliatone/go-courses/internal/logging"
	"github.com/goliatone/go-courses/pkg/interfaces"
)

// Renderer turns indexed courses into HTML.
type Renderer struct {
	parser   interfaces.MarkdownParser
	defaults interfaces.ParseOptions
	logger   interfaces.Logger
}

var _ interfaces.CourseRenderer = (*Renderer)(nil)

// NewRenderer builds a renderer. A nil parser selects goldmark configured
// with defaults.
func NewRenderer(parser interfaces.MarkdownParser, defaults interfaces.ParseOptions, logger interfaces.Logger) *Renderer {
	if parser == nil {
		parser = NewGoldmarkParser(defaults)
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Renderer{parser: parser, defaults: defaults, logger: logger}
}

// Render converts raw Markdown to HTML, merging opts over the defaults.
func (r *Renderer) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.parser.ParseWithOptions(markdown, mergeParseOptions(r.defaults, opts))
}

// RenderCourse strips the course front matter and renders the body.
func (r *Renderer) RenderCourse(ctx context.Context, course interfaces.Course, opts interfaces.ParseOptions) (*interfaces.RenderedCourse, error) {
	logger := logging.WithCourseContext(r.logger, course.Path, course.Category, course.ID)

	meta, body, err := ParseFrontMatter([]byte(course.Content))
	if err != nil {
		logger.Error("courses.render.frontmatter.failed", "error", err)
		return nil, fmt.Errorf("markdown render %s: %w", course.Path, err)
	}

	html, err := r.Render(ctx, body, opts)
	if err != nil {
		logger.Error("courses.render.failed", "error", err)
		return nil, fmt.Errorf("markdown render %s: %w", course.Path, err)
	}

	logger.Debug("courses.render.completed", "html_bytes", len(html))
	return &interfaces.RenderedCourse{
		Course:      course,
		FrontMatter: meta,
		Body:        body,
		HTML:        html,
	}, nil
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	result.Sanitize = result.Sanitize || override.Sanitize
	result.HardWraps = result.HardWraps || override.HardWraps
	result.SafeMode = result.SafeMode || override.SafeMode
	return result
}
