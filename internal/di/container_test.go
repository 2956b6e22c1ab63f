package di_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	command "github.com/goliatone/go-command"

	coursescmd "github.com/goliatone/go-courses/internal/commands/courses"
	"github.com/goliatone/go-courses/internal/di"
	"github.com/goliatone/go-courses/internal/documents"
	"github.com/goliatone/go-courses/internal/logging"
	"github.com/goliatone/go-courses/internal/runtimeconfig"
	"github.com/goliatone/go-courses/pkg/interfaces"
	"github.com/goliatone/go-courses/pkg/testsupport"
)

func contentFS() fstest.MapFS {
	return fstest.MapFS{
		"web-development/2.20240112090000.CSS.Layout.md":  {Data: []byte("# CSS")},
		"web-development/1.20240110090000.HTML.Basics.md": {Data: []byte("---\ntitle: HTML Basics\n---\n# HTML")},
		"data-science/1.20240201120000.Pandas.md":         {Data: []byte("# Pandas")},
		"data-science/notes.txt":                          {Data: []byte("ignored")},
	}
}

func TestContainerLoadsFromContentFS(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()

	container, err := di.NewContainer(cfg, di.WithContentFS(contentFS()))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if err := container.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	groups := container.Indexer().AllCategories()
	if len(groups) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(groups))
	}
	if groups[0].Category != "data-science" || groups[1].Category != "web-development" {
		t.Fatalf("unexpected category order: %s, %s", groups[0].Category, groups[1].Category)
	}
	web := container.Indexer().ByCategory("web-development")
	if len(web) != 2 || web[0].Title != "HTML.Basics" {
		t.Fatalf("unexpected web-development courses: %+v", web)
	}

	rendered, err := container.Renderer().RenderCourse(context.Background(), web[0], interfaces.ParseOptions{})
	if err != nil {
		t.Fatalf("RenderCourse: %v", err)
	}
	if rendered.FrontMatter.Title != "HTML Basics" {
		t.Fatalf("expected front matter title, got %q", rendered.FrontMatter.Title)
	}
}

func TestContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Source = "ftp"

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrContentSourceUnknown) {
		t.Fatalf("expected ErrContentSourceUnknown, got %v", err)
	}
}

func TestContainerMissingContentDir(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Dir = filepath.Join(t.TempDir(), "missing")

	if _, err := di.NewContainer(cfg); err == nil {
		t.Fatal("expected error for missing content directory")
	}
}

func TestContainerReloadWithoutCommandsFeature(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Commands = false

	reg := &recordingRegistry{}
	container, err := di.NewContainer(cfg, di.WithContentFS(contentFS()), di.WithCommandRegistry(reg))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if len(reg.handlers) != 0 {
		t.Fatalf("expected no handlers registered when commands disabled, got %d", len(reg.handlers))
	}
	if err := container.Reload(context.Background(), "manual"); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := len(container.Indexer().All()); got != 3 {
		t.Fatalf("expected 3 courses, got %d", got)
	}
}

func TestContainerRegistersCommandsAndCron(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Commands.AutoRegisterCron = true
	cfg.Commands.RebuildSchedule = "@hourly"

	reg := &recordingRegistry{}
	var cronCfg command.HandlerConfig
	var tick func() error
	container, err := di.NewContainer(cfg,
		di.WithContentFS(contentFS()),
		di.WithCommandRegistry(reg),
		di.WithCronRegistrar(func(cfg command.HandlerConfig, fn any) error {
			cronCfg = cfg
			tick = fn.(func() error)
			return nil
		}),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if len(reg.handlers) != 1 || reg.handlers[0] != container.Commands().Rebuild {
		t.Fatalf("expected rebuild handler registered, got %#v", reg.handlers)
	}
	if cronCfg.Expression != "@hourly" {
		t.Fatalf("expected cron expression @hourly, got %q", cronCfg.Expression)
	}
	if err := tick(); err != nil {
		t.Fatalf("cron tick: %v", err)
	}
	if got := len(container.Indexer().All()); got != 3 {
		t.Fatalf("expected cron tick to index 3 courses, got %d", got)
	}
}

func TestContainerLoggerProviderReceivesModuleEntries(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	recorder := &logging.Recorder{}

	container, err := di.NewContainer(cfg, di.WithContentFS(contentFS()), di.WithLoggerProvider(recorder))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if err := container.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var initialized *logging.RecordedEntry
	for i, entry := range recorder.Entries {
		if entry.Message == "courses.indexer.initialized" {
			initialized = &recorder.Entries[i]
		}
	}
	if initialized == nil {
		t.Fatalf("expected courses.indexer.initialized entry, got %v", recorder.Messages())
	}
	if initialized.Fields["module"] != "courses.indexer" {
		t.Fatalf("expected module field courses.indexer, got %v", initialized.Fields["module"])
	}
}

func TestContainerWatchReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	category := filepath.Join(dir, "web")
	if err := os.Mkdir(category, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(category, "1.20240101000000.Intro.md"), "intro")

	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Dir = dir
	cfg.Features.Watch = true
	cfg.Watch.DebounceDelay = 20 * time.Millisecond

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	ctx := context.Background()
	if err := container.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := container.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = container.Stop() })

	if err := container.Start(ctx); !errors.Is(err, di.ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}

	writeFile(t, filepath.Join(category, "2.20240102000000.Next.md"), "next")
	waitFor(t, func() bool { return len(container.Indexer().ByCategory("web")) == 2 })
}

func TestContainerRepositorySourceReloadsOnChange(t *testing.T) {
	sqldb, err := testsupport.NewSQLiteMemoryDB("di_repository")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	db, err := documents.NewBunDB(sqldb, "sqlite")
	if err != nil {
		t.Fatalf("NewBunDB: %v", err)
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Repository = true
	cfg.Content.Source = runtimeconfig.SourceRepository

	container, err := di.NewContainer(cfg, di.WithBunDB(db))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if _, ok := container.Repository().(*documents.BunRepository); !ok {
		t.Fatalf("expected bun repository, got %T", container.Repository())
	}

	ctx := context.Background()
	if err := container.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(container.Indexer().All()); got != 0 {
		t.Fatalf("expected empty index, got %d", got)
	}

	if err := container.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = container.Stop() })

	if _, err := container.Repository().Upsert(ctx, interfaces.Document{
		Path:    "web/1.20240101000000.Intro.md",
		Content: "intro",
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	waitFor(t, func() bool { return len(container.Indexer().ByCategory("web")) == 1 })
}

func TestContainerMemoryRepositoryAsCommandSource(t *testing.T) {
	repo := documents.NewMemoryRepository(interfaces.Document{
		Path:    "data/1.20240101000000.Pandas.md",
		Content: "pandas",
	})

	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Repository = true

	container, err := di.NewContainer(cfg, di.WithContentFS(contentFS()), di.WithRepository(repo))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	err = container.Commands().Rebuild.Execute(context.Background(), coursescmd.RebuildIndexCommand{
		Source: coursescmd.SourceRepository,
	})
	if err != nil {
		t.Fatalf("rebuild from repository: %v", err)
	}
	if got := len(container.Indexer().All()); got != 1 {
		t.Fatalf("expected 1 course from repository, got %d", got)
	}
}

func TestContainerRejectsWatchWithContentFS(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Watch = true

	if _, err := di.NewContainer(cfg, di.WithContentFS(contentFS())); !errors.Is(err, di.ErrWatchRequiresContentDir) {
		t.Fatalf("expected ErrWatchRequiresContentDir, got %v", err)
	}
}

func TestContainerCachedBunRepository(t *testing.T) {
	sqldb, err := testsupport.NewSQLiteMemoryDB("di_cache")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	db, err := documents.NewBunDB(sqldb, "sqlite")
	if err != nil {
		t.Fatalf("NewBunDB: %v", err)
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Repository = true
	cfg.Content.Source = runtimeconfig.SourceRepository
	cfg.Cache.Enabled = true

	container, err := di.NewContainer(cfg, di.WithBunDB(db))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	ctx := context.Background()
	if err := container.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	repo := container.Repository()
	doc := interfaces.Document{Path: "web/1.20240101000000.Intro.md", Content: "intro"}
	if _, err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	for i := 0; i < 2; i++ {
		got, err := repo.Get(ctx, doc.Path)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Content != "intro" {
			t.Fatalf("unexpected document %+v", got)
		}
	}

	if err := container.Reload(ctx, "test"); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := len(container.Indexer().ByCategory("web")); got != 1 {
		t.Fatalf("expected 1 indexed course, got %d", got)
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
