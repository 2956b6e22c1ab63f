package markdown

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-courses/internal/courses"
	"github.com/goliatone/go-courses/internal/logging"
	"github.com/goliatone/go-courses/pkg/interfaces"
)

func TestRenderCourseFromIndexedDirectory(t *testing.T) {
	src, err := NewDirSource("testdata/content", SourceConfig{Recursive: true}, nil)
	if err != nil {
		t.Fatalf("NewDirSource: %v", err)
	}
	ix := courses.NewIndexer()
	if err := ix.Load(context.Background(), src); err != nil {
		t.Fatalf("Load: %v", err)
	}

	course, ok := ix.ByID("web-development", "1")
	if !ok {
		t.Fatalf("expected course web-development/1, categories: %+v", ix.AllCategories())
	}

	rec := &logging.Recorder{}
	renderer := NewRenderer(nil, interfaces.ParseOptions{}, rec)
	rendered, err := renderer.RenderCourse(context.Background(), course, interfaces.ParseOptions{})
	if err != nil {
		t.Fatalf("RenderCourse: %v", err)
	}

	if rendered.FrontMatter.Summary != "Structure of a web page" {
		t.Fatalf("expected summary from front matter, got %q", rendered.FrontMatter.Summary)
	}
	html := string(rendered.HTML)
	if !strings.Contains(html, "HTML Basics</h1>") || strings.Contains(html, "summary:") {
		t.Fatalf("unexpected html %q", html)
	}
	if rendered.Course.Title != "HTML.Basics" {
		t.Fatalf("expected course title to be kept, got %q", rendered.Course.Title)
	}
	if len(rec.Messages()) == 0 {
		t.Fatal("expected render events to be logged")
	}
}

func TestRenderCourseTables(t *testing.T) {
	renderer := NewRenderer(nil, interfaces.ParseOptions{}, nil)
	course := interfaces.Course{
		Path:    "data-science/1.20240201120000.Pandas.md",
		Content: string(readFixture(t, "testdata/content/data-science/1.20240201120000.Pandas.md")),
	}

	rendered, err := renderer.RenderCourse(context.Background(), course, interfaces.ParseOptions{})
	if err != nil {
		t.Fatalf("RenderCourse: %v", err)
	}
	if !strings.Contains(string(rendered.HTML), "<table>") {
		t.Fatalf("expected GFM table, got %q", string(rendered.HTML))
	}
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	renderer := NewRenderer(nil, interfaces.ParseOptions{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := renderer.Render(ctx, []byte("# x"), interfaces.ParseOptions{}); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestMergeParseOptions(t *testing.T) {
	merged := mergeParseOptions(
		interfaces.ParseOptions{Extensions: []string{"gfm"}, HardWraps: true},
		interfaces.ParseOptions{Extensions: []string{"table"}, SafeMode: true},
	)
	if len(merged.Extensions) != 1 || merged.Extensions[0] != "table" {
		t.Fatalf("expected override extensions, got %v", merged.Extensions)
	}
	if !merged.HardWraps || !merged.SafeMode {
		t.Fatalf("expected flags to be OR-ed, got %+v", merged)
	}
}
