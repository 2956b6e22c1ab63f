package courses

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-courses/internal/logging"
	"github.com/goliatone/go-courses/pkg/interfaces"
)

func sampleDocuments() []interfaces.Document {
	return []interfaces.Document{
		{Path: "content/web/10.20240102000000.Grid.md", Content: "grid"},
		{Path: "content/data/1.20240103000000.Pandas.md", Content: "pandas"},
		{Path: "content/web/2.20240101000000.Flexbox.md", Content: "flex"},
		{Path: "content/web/bad.md", Content: "broken"},
		{Path: "content/data/3.abc.Numpy.md", Content: "numpy"},
		{Path: "orphan.md", Content: "no category"},
		{Path: "content/web/1.20231231000000.HTML.Basics.md", Content: "html"},
	}
}

func TestInitializeGroupsByFirstSeenCategory(t *testing.T) {
	ix := NewIndexer()
	ix.Initialize(sampleDocuments())

	groups := ix.AllCategories()
	if len(groups) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(groups))
	}
	if groups[0].Category != "web" || groups[1].Category != "data" {
		t.Fatalf("expected first-seen order [web data], got [%s %s]", groups[0].Category, groups[1].Category)
	}
	if groups[0].Slug != "web" {
		t.Fatalf("expected slug web, got %q", groups[0].Slug)
	}
}

func TestByCategorySortsNumerically(t *testing.T) {
	ix := NewIndexer()
	ix.Initialize(sampleDocuments())

	web := ix.ByCategory("web")
	var ids []string
	for _, course := range web {
		ids = append(ids, course.ID)
	}
	if want := []string{"1", "2", "10"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected ids %v, got %v", want, ids)
	}
	for _, course := range web {
		if course.Category != "web" {
			t.Fatalf("unexpected category %q in web group", course.Category)
		}
	}
	if web[0].Title != "HTML.Basics" {
		t.Fatalf("expected dotted title, got %q", web[0].Title)
	}
}

func TestByCategoryUnknownReturnsEmpty(t *testing.T) {
	ix := NewIndexer()
	ix.Initialize(sampleDocuments())

	got := ix.ByCategory("nonexistent")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestAllConcatenatesGroups(t *testing.T) {
	ix := NewIndexer()
	ix.Initialize(sampleDocuments())

	all := ix.All()
	total := 0
	for _, group := range ix.AllCategories() {
		total += len(group.Courses)
	}
	if len(all) != total || len(all) != 4 {
		t.Fatalf("expected 4 courses across groups, got all=%d total=%d", len(all), total)
	}

	seen := map[string]bool{}
	for _, course := range all {
		if seen[course.Path] {
			t.Fatalf("duplicate course %s", course.Path)
		}
		seen[course.Path] = true
	}
	if all[3].Category != "data" {
		t.Fatalf("expected data courses after web courses, got %s", all[3].Category)
	}
}

func TestMalformedDocumentsAreSkippedAndLogged(t *testing.T) {
	ix := NewIndexer()
	ix.Initialize(sampleDocuments())

	for _, course := range ix.All() {
		if course.Title == "Numpy" {
			t.Fatal("expected document with bad datetime to be excluded")
		}
	}

	log := strings.Join(ix.DiagnosticLog(), "\n")
	for _, path := range []string{"content/data/3.abc.Numpy.md", "orphan.md", "content/web/bad.md"} {
		if !strings.Contains(log, "Error processing file "+path) {
			t.Fatalf("expected diagnostic entry for %s, got:\n%s", path, log)
		}
	}

	stats := ix.Stats()
	if stats.Documents != 7 || stats.Indexed != 4 || stats.Skipped != 3 || stats.Categories != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestFailuresCarryValidationCategory(t *testing.T) {
	ix := NewIndexer()
	ix.Initialize([]interfaces.Document{{Path: "cat/1.abc.Title.md"}})

	failures := ix.Failures()
	if len(failures) != 1 {
		t.Fatalf("expected one failure, got %d", len(failures))
	}
	if !goerrors.IsCategory(failures[0], goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", failures[0])
	}
	if !errors.Is(failures[0], ErrDatetimeMalformed) {
		t.Fatalf("expected ErrDatetimeMalformed in chain, got %v", failures[0])
	}
}

func TestDiagnosticLogOrder(t *testing.T) {
	ix := NewIndexer()
	ix.Initialize([]interfaces.Document{
		{Path: "cat/42.20240115103000.My.Title.md", Content: "héllo"},
	})

	want := []string{
		"Found 1 markdown files.",
		"Processed file: cat/42.20240115103000.My.Title.md",
		"- ID: 42, Title: My.Title, Category: cat",
		"- Datetime: 2024-01-15T10:30:00Z",
		"- Content length: 5 characters",
		"Processed 1 categories.",
		"- cat: 1 courses",
	}
	if got := ix.DiagnosticLog(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected diagnostic log\nwant: %q\ngot:  %q", want, got)
	}
}

func TestInitializeIsIdempotentAndReplacesState(t *testing.T) {
	ix := NewIndexer()
	ix.Initialize(sampleDocuments())
	first := ix.AllCategories()
	firstLog := ix.DiagnosticLog()

	ix.Initialize(sampleDocuments())
	if !reflect.DeepEqual(first, ix.AllCategories()) {
		t.Fatal("expected identical index after re-initialization")
	}
	if !reflect.DeepEqual(firstLog, ix.DiagnosticLog()) {
		t.Fatal("expected identical diagnostic log after re-initialization")
	}

	ix.Initialize(nil)
	if len(ix.AllCategories()) != 0 || len(ix.All()) != 0 {
		t.Fatal("expected empty index after initializing with no documents")
	}
}

func TestReadersCannotMutateIndex(t *testing.T) {
	ix := NewIndexer()
	ix.Initialize(sampleDocuments())

	groups := ix.AllCategories()
	groups[0].Courses[0].Title = "mutated"
	courses := ix.ByCategory("web")
	courses[1].ID = "999"

	if ix.ByCategory("web")[0].Title == "mutated" {
		t.Fatal("expected AllCategories to return copies")
	}
	if ix.ByCategory("web")[1].ID == "999" {
		t.Fatal("expected ByCategory to return copies")
	}
}

func TestLookups(t *testing.T) {
	ix := NewIndexer()
	ix.Initialize(sampleDocuments())

	course, ok := ix.ByID("web", "2")
	if !ok || course.Title != "Flexbox" {
		t.Fatalf("expected Flexbox, got %+v (found=%v)", course, ok)
	}
	if _, ok := ix.ByID("data", "2"); ok {
		t.Fatal("expected lookup to be scoped to category")
	}

	byUUID, ok := ix.ByUUID(course.UUID)
	if !ok || byUUID.Path != course.Path {
		t.Fatalf("expected uuid lookup to find %s, got %+v", course.Path, byUUID)
	}

	group, ok := ix.CategoryBySlug("data")
	if !ok || len(group.Courses) != 1 {
		t.Fatalf("expected data group by slug, got %+v", group)
	}
	if _, ok := ix.CategoryBySlug(""); ok {
		t.Fatal("expected empty slug to miss")
	}
}

func TestLookupsKeepCaseDistinctCategoriesApart(t *testing.T) {
	ix := NewIndexer()
	ix.Initialize([]interfaces.Document{
		{Path: "Web/1.20240101000000.Upper.md", Content: "upper"},
		{Path: "web/1.20240101000000.Lower.md", Content: "lower"},
		{Path: "cat/3.20240101000000.A.md", Content: "a"},
		{Path: "cat/3.20240101000000.B.md", Content: "b"},
	})

	upper, ok := ix.ByID("Web", "1")
	if !ok || upper.Title != "Upper" {
		t.Fatalf("expected Upper in Web, got %+v", upper)
	}
	lower, ok := ix.ByID("web", "1")
	if !ok || lower.Title != "Lower" {
		t.Fatalf("expected Lower in web, got %+v", lower)
	}
	if upper.UUID == lower.UUID {
		t.Fatalf("expected distinct uuids, both were %s", upper.UUID)
	}
	if got, ok := ix.ByUUID(lower.UUID); !ok || got.Title != "Lower" {
		t.Fatalf("expected uuid lookup to return Lower, got %+v", got)
	}

	dupes := ix.ByCategory("cat")
	if len(dupes) != 2 || dupes[0].UUID == dupes[1].UUID {
		t.Fatalf("expected two courses with distinct uuids, got %+v", dupes)
	}
	for _, course := range dupes {
		if got, ok := ix.ByUUID(course.UUID); !ok || got.Path != course.Path {
			t.Fatalf("expected uuid lookup to return %s, got %+v", course.Path, got)
		}
	}

	first, ok := ix.CategoryBySlug("web")
	if !ok || first.Category != "Web" {
		t.Fatalf("expected slug web to resolve Web, got %+v", first)
	}
	second, ok := ix.CategoryBySlug("web-2")
	if !ok || second.Category != "web" {
		t.Fatalf("expected slug web-2 to resolve web, got %+v", second)
	}
}

func TestStableOrderForDuplicateIDs(t *testing.T) {
	ix := NewIndexer()
	ix.Initialize([]interfaces.Document{
		{Path: "cat/5.20240101000000.First.md"},
		{Path: "cat/05.20240101000000.Second.md"},
		{Path: "cat/1.20240101000000.Zero.md"},
	})

	courses := ix.ByCategory("cat")
	if courses[0].Title != "Zero" || courses[1].Title != "First" || courses[2].Title != "Second" {
		t.Fatalf("expected stable order for equal ids, got %+v", courses)
	}
}

func TestEntriesMirroredToLogger(t *testing.T) {
	rec := &logging.Recorder{}
	ix := NewIndexer(WithLogger(rec))
	ix.Initialize([]interfaces.Document{{Path: "orphan.md"}})

	messages := rec.Messages()
	if !contains(messages, "courses.indexer.document.skipped") {
		t.Fatalf("expected skipped event, got %v", messages)
	}
	if !contains(messages, "courses.indexer.initialized") {
		t.Fatalf("expected initialized event, got %v", messages)
	}
}

type stubSource struct {
	docs []interfaces.Document
	err  error
}

func (s stubSource) ListDocuments(context.Context) ([]interfaces.Document, error) {
	return s.docs, s.err
}

func TestLoadKeepsPreviousIndexOnDiscoveryError(t *testing.T) {
	ix := NewIndexer()
	if err := ix.Load(context.Background(), stubSource{docs: sampleDocuments()}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	boom := errors.New("disk gone")
	err := ix.Load(context.Background(), stubSource{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected discovery error, got %v", err)
	}
	if len(ix.All()) != 4 {
		t.Fatalf("expected previous index to survive, got %d courses", len(ix.All()))
	}
}

func TestConcurrentReadersDuringRebuild(t *testing.T) {
	ix := NewIndexer()
	docs := sampleDocuments()
	ix.Initialize(docs)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ix.Initialize(docs)
		}()
		go func() {
			defer wg.Done()
			if n := len(ix.All()); n != 4 {
				t.Errorf("expected 4 courses, got %d", n)
			}
		}()
	}
	wg.Wait()
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

type globSource struct {
	pattern string
	docs    []interfaces.Document
}

func (s globSource) ListDocuments(context.Context) ([]interfaces.Document, error) {
	return s.docs, nil
}

func (s globSource) SearchPattern() string { return s.pattern }

func TestLoadTracesSearchPattern(t *testing.T) {
	ix := NewIndexer()
	err := ix.Load(context.Background(), globSource{
		pattern: "content/**/*.md",
		docs:    []interfaces.Document{{Path: "cat/1.20240101000000.Intro.md", Content: "x"}},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	log := ix.DiagnosticLog()
	if len(log) < 2 || log[0] != "Searching for files with pattern: content/**/*.md" || log[1] != "Found 1 markdown files." {
		t.Fatalf("expected search pattern before discovery count, got %q", log)
	}
}
