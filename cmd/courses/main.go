package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	courses "github.com/goliatone/go-courses"
	"github.com/goliatone/go-courses/internal/documents"
	"github.com/goliatone/go-courses/internal/logging/console"
	"github.com/goliatone/go-courses/internal/markdown"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("courses: %v", err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("courses", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		contentDir  = fs.String("content-dir", "content", "Path to the course content root")
		pattern     = fs.String("pattern", "*.md", "Glob pattern applied when discovering course files")
		category    = fs.String("category", "", "Print the courses of a single category")
		render      = fs.String("render", "", "Render a course as HTML, addressed as category/id")
		diagnostics = fs.Bool("diagnostics", false, "Print the diagnostic log of the last build")
		stats       = fs.Bool("stats", false, "Print index counters")
		dbPath      = fs.String("db", "", "SQLite database holding course documents; switches to the repository source")
		syncDocs    = fs.Bool("sync", false, "Copy documents from -content-dir into -db before indexing")
		logLevel    = fs.String("log-level", "", "Enable logging at the given level (trace, debug, info, warn, error)")
		logFormat   = fs.String("log-format", "console", "Logging provider output: console, json or pretty")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *syncDocs && *dbPath == "" {
		return errors.New("-sync requires -db")
	}

	cfg := courses.DefaultConfig()
	cfg.Content.Dir = strings.TrimSpace(*contentDir)
	cfg.Content.Pattern = strings.TrimSpace(*pattern)

	var opts []courses.Option
	if level := strings.TrimSpace(*logLevel); level != "" {
		cfg.Features.Logger = true
		cfg.Logging.Level = level
		format := strings.ToLower(strings.TrimSpace(*logFormat))
		if format == "" || format == "console" {
			cfg.Logging.Provider = "console"
			consoleOpts := console.Options{Writer: stderr}
			if parsed, ok := console.ParseLevel(level); ok {
				consoleOpts.MinLevel = &parsed
			}
			opts = append(opts, courses.WithLoggerProvider(console.NewProvider(consoleOpts)))
		} else {
			cfg.Logging.Provider = "gologger"
			cfg.Logging.Format = format
		}
	}

	if *dbPath != "" {
		sqldb, err := sql.Open("sqlite3", *dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer sqldb.Close()

		db, err := documents.NewBunDB(sqldb, "sqlite")
		if err != nil {
			return err
		}
		cfg.Features.Repository = true
		cfg.Storage.Driver = "sqlite"
		cfg.Content.Source = courses.SourceRepository
		opts = append(opts, courses.WithBunDB(db))
	}

	module, err := courses.New(cfg, opts...)
	if err != nil {
		return fmt.Errorf("initialise courses module: %w", err)
	}

	ctx := context.Background()
	if err := module.Load(ctx); err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	if *syncDocs {
		if err := syncRepository(ctx, module, cfg.Content); err != nil {
			return err
		}
		if err := module.Reload(ctx, "sync"); err != nil {
			return fmt.Errorf("reload index: %w", err)
		}
	}

	index := module.Index()
	switch {
	case *diagnostics:
		for _, line := range index.DiagnosticLog() {
			fmt.Fprintln(stdout, line)
		}
		return nil
	case *render != "":
		cat, id, ok := strings.Cut(*render, "/")
		if !ok {
			return fmt.Errorf("-render expects category/id, got %q", *render)
		}
		rendered, err := module.Render(ctx, cat, id, courses.ParseOptions{})
		if err != nil {
			return err
		}
		_, err = stdout.Write(rendered.HTML)
		return err
	case *category != "":
		return writeJSON(stdout, index.ByCategory(*category))
	case *stats:
		return writeJSON(stdout, index.Stats())
	default:
		return writeJSON(stdout, index.AllCategories())
	}
}

func syncRepository(ctx context.Context, module *courses.Module, content courses.ContentConfig) error {
	repo := module.Container().Repository()
	if repo == nil {
		return errors.New("document repository not configured")
	}
	source, err := markdown.NewDirSource(content.Dir, markdown.SourceConfig{
		Pattern:   content.Pattern,
		Recursive: true,
	}, nil)
	if err != nil {
		return err
	}
	docs, err := source.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("discover documents: %w", err)
	}
	for _, doc := range docs {
		if _, err := repo.Upsert(ctx, doc); err != nil {
			return fmt.Errorf("store %s: %w", doc.Path, err)
		}
	}
	return nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
