package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-courses/internal/logging"
	"github.com/goliatone/go-courses/pkg/interfaces"
)

// DefaultPattern matches course files.
const DefaultPattern = "*.md"

// SourceConfig configures how documents are discovered.
type SourceConfig struct {
	// Root is the directory inside the filesystem to walk. Defaults to ".".
	Root string
	// Pattern filters files by base name. Defaults to "*.md".
	Pattern string
	// Recursive walks sub-directories. Course files live one level below
	// Root, so callers normally enable it.
	Recursive bool
}

// Source lists course documents stored in an fs.FS.
type Source struct {
	fs        fs.FS
	dir       string
	root      string
	pattern   string
	recursive bool
	logger    interfaces.Logger
}

var _ interfaces.PatternSource = (*Source)(nil)

// NewSource builds a Source over filesystem.
func NewSource(filesystem fs.FS, cfg SourceConfig, logger interfaces.Logger) (*Source, error) {
	if filesystem == nil {
		return nil, fmt.Errorf("markdown source: filesystem is nil")
	}
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := path.Match(pattern, "probe"); err != nil {
		return nil, fmt.Errorf("markdown source: invalid pattern %q: %w", pattern, err)
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Source{
		fs:        filesystem,
		root:      cleanRoot(cfg.Root),
		pattern:   pattern,
		recursive: cfg.Recursive,
		logger:    logger,
	}, nil
}

// NewDirSource builds a Source over a directory on disk.
func NewDirSource(dir string, cfg SourceConfig, logger interfaces.Logger) (*Source, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("markdown source: stat content dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("markdown source: %s is not a directory", dir)
	}
	source, err := NewSource(os.DirFS(dir), cfg, logger)
	if err != nil {
		return nil, err
	}
	source.dir = filepath.ToSlash(dir)
	return source, nil
}

// SearchPattern reports the glob the source lists, prefixed with the content
// directory when the source reads from disk.
func (s *Source) SearchPattern() string {
	glob := s.pattern
	if s.recursive {
		glob = "**/" + glob
	}
	base := path.Join(s.dir, s.root)
	if base == "." {
		return glob
	}
	return base + "/" + glob
}

// ListDocuments walks the filesystem and returns every matching file sorted
// by path. Paths are slash separated and relative to the filesystem root so
// the category is always the parent directory name.
func (s *Source) ListDocuments(ctx context.Context) ([]interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("courses.sources.walk.start", "root", s.root, "pattern", s.pattern)

	var docs []interfaces.Document
	err := fs.WalkDir(s.fs, s.root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if current != s.root && !s.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if ok, _ := path.Match(s.pattern, path.Base(current)); !ok {
			return nil
		}

		data, err := fs.ReadFile(s.fs, current)
		if err != nil {
			return fmt.Errorf("markdown source: read %s: %w", current, err)
		}
		docs = append(docs, interfaces.Document{
			Path:    current,
			Content: string(data),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Path < docs[j].Path
	})

	s.logger.Info("courses.sources.walk.completed", "root", s.root, "documents", len(docs))
	return docs, nil
}

func cleanRoot(root string) string {
	root = strings.TrimSpace(root)
	if root == "" {
		return "."
	}
	root = path.Clean(strings.ReplaceAll(root, "\\", "/"))
	if root = strings.TrimPrefix(root, "/"); root == "" {
		return "."
	}
	return root
}
