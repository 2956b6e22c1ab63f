// Package watch turns filesystem activity under the content directory into
// debounced reload signals.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-courses/internal/logging"
	"github.com/goliatone/go-courses/pkg/interfaces"
)

// DefaultDebounceDelay coalesces editor save bursts into one reload.
const DefaultDebounceDelay = 100 * time.Millisecond

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("watch: watcher already started")

// Config configures a Watcher.
type Config struct {
	Dir           string
	Pattern       string
	DebounceDelay time.Duration
}

// Event is one debounced batch of changed paths. Err is set when the
// underlying watcher reports a failure instead.
type Event struct {
	Paths []string
	Err   error
}

// Watcher reports changes to course files under a directory tree.
type Watcher struct {
	fsw      *fsnotify.Watcher
	dir      string
	pattern  string
	debounce time.Duration
	logger   interfaces.Logger

	mu      sync.Mutex
	started bool
	events  chan Event
	done    chan struct{}
}

// New creates a watcher over cfg.Dir. Nothing is watched until Start.
func New(cfg Config, logger interfaces.Logger) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("watch: directory is required")
	}
	if cfg.Pattern == "" {
		cfg.Pattern = "*.md"
	}
	if _, err := filepath.Match(cfg.Pattern, "probe"); err != nil {
		return nil, err
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}
	if logger == nil {
		logger = logging.NoOp()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsw:      fsw,
		dir:      cfg.Dir,
		pattern:  cfg.Pattern,
		debounce: cfg.DebounceDelay,
		logger:   logger,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}, nil
}

// Start registers the directory tree and begins emitting events until ctx
// is cancelled or Stop is called. The returned channel is closed on exit.
func (w *Watcher) Start(ctx context.Context) (<-chan Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil, ErrAlreadyStarted
	}
	if err := w.addTree(w.dir); err != nil {
		return nil, err
	}
	w.started = true

	go w.loop(ctx)
	w.logger.Info("courses.watch.started", "dir", w.dir)
	return w.events, nil
}

// Stop releases the fsnotify watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	err := w.fsw.Close()
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if started {
		<-w.done
	}
	w.logger.Info("courses.watch.stopped", "dir", w.dir)
	return err
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer close(w.events)

	pending := map[string]struct{}{}
	var timer *time.Timer
	var fire <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for path := range pending {
			paths = append(paths, path)
		}
		slices.Sort(paths)
		clear(pending)
		w.emit(ctx, Event{Paths: paths})
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case evt, ok := <-w.fsw.Events:
			if !ok {
				flush()
				return
			}
			if !w.relevant(evt) {
				continue
			}
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			flush()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("courses.watch.error", "dir", w.dir, "error", err)
			w.emit(ctx, Event{Err: err})
		}
	}
}

func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if evt.Op == fsnotify.Chmod {
		return false
	}
	if evt.Has(fsnotify.Create) {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if err := w.addTree(evt.Name); err != nil {
				w.logger.Warn("courses.watch.add_dir.failed", "path", evt.Name, "error", err)
			}
			return true
		}
	}
	if evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename) {
		return true
	}
	ok, _ := filepath.Match(w.pattern, filepath.Base(evt.Name))
	return ok
}

func (w *Watcher) emit(ctx context.Context, evt Event) {
	select {
	case w.events <- evt:
	case <-ctx.Done():
	default:
		w.logger.Warn("courses.watch.event.dropped", "paths", len(evt.Paths))
	}
}
