package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	command "github.com/goliatone/go-command"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	coursescmd "github.com/goliatone/go-courses/internal/commands/courses"
	"github.com/goliatone/go-courses/internal/courses"
	"github.com/goliatone/go-courses/internal/documents"
	"github.com/goliatone/go-courses/internal/logging"
	"github.com/goliatone/go-courses/internal/logging/console"
	"github.com/goliatone/go-courses/internal/logging/gologger"
	"github.com/goliatone/go-courses/internal/markdown"
	"github.com/goliatone/go-courses/internal/runtimeconfig"
	"github.com/goliatone/go-courses/internal/watch"
	"github.com/goliatone/go-courses/pkg/interfaces"
)

// ErrAlreadyStarted is returned when Start is called on a running container.
var ErrAlreadyStarted = errors.New("di: container already started")

// ErrWatchRequiresContentDir rejects watching when WithContentFS replaces the
// content directory, since the watcher can only observe Config.Content.Dir.
var ErrWatchRequiresContentDir = errors.New("di: watch feature cannot be combined with WithContentFS")

// CommandRegistry is the registration contract used to expose command handlers.
type CommandRegistry = coursescmd.CommandRegistry

// Container wires module dependencies around a single shared course index.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB      *bun.DB
	repository documents.Repository

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	contentFS fs.FS
	source    interfaces.DocumentSource
	parser    interfaces.MarkdownParser

	indexer  *courses.Indexer
	renderer *markdown.Renderer

	commandRegistry CommandRegistry
	cronRegistrar   coursescmd.CronRegistrar
	commands        *coursescmd.HandlerSet

	schemaOnce sync.Once
	schemaErr  error

	mu      sync.Mutex
	cancel  context.CancelFunc
	watcher *watch.Watcher
	wg      sync.WaitGroup
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB backs the document repository with a Bun database.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithRepository overrides the document repository.
func WithRepository(repo documents.Repository) Option {
	return func(c *Container) {
		c.repository = repo
	}
}

// WithCache overrides the cache service used by the Bun document repository.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithContentFS reads the filesystem source from fsys instead of
// Config.Content.Dir. It cannot be combined with Features.Watch.
func WithContentFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.contentFS = fsys
	}
}

// WithSource overrides the filesystem document source.
func WithSource(source interfaces.DocumentSource) Option {
	return func(c *Container) {
		c.source = source
	}
}

// WithMarkdownParser overrides the goldmark parser used by the renderer.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		c.parser = parser
	}
}

// WithCommandRegistry registers command handlers with reg during construction.
func WithCommandRegistry(reg CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithCronRegistrar schedules the rebuild command when Commands.AutoRegisterCron is set.
func WithCronRegistrar(reg coursescmd.CronRegistrar) Option {
	return func(c *Container) {
		c.cronRegistrar = reg
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.contentFS != nil && cfg.Features.Watch {
		return nil, ErrWatchRequiresContentDir
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "courses.container")

	if err := c.configureCacheDefaults(); err != nil {
		return nil, err
	}

	if err := c.configureSources(); err != nil {
		return nil, err
	}

	c.indexer = courses.NewIndexer(courses.WithLogger(logging.IndexerLogger(c.loggerProvider)))
	c.renderer = markdown.NewRenderer(c.parser, parseOptions(cfg.Markdown.Parser), logging.RenderLogger(c.loggerProvider))

	if err := c.configureCommands(); err != nil {
		return nil, err
	}

	c.logger.Debug("courses.container.configured",
		"source", c.sourceName(),
		"repository", c.repository != nil,
		"cache", c.cacheService != nil,
		"commands", cfg.Features.Commands,
		"watch", cfg.Features.Watch,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureCacheDefaults() error {
	if !c.Config.Cache.Enabled {
		return nil
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return fmt.Errorf("di: cache service: %w", err)
		}
		c.cacheService = service
	}

	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureSources() error {
	if c.repository == nil && c.Config.Features.Repository {
		logger := logging.RepositoryLogger(c.loggerProvider)
		if c.bunDB != nil {
			c.repository = documents.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer, logger)
		} else {
			c.repository = documents.NewMemoryRepository()
		}
	}

	if c.source != nil || c.sourceName() != coursescmd.SourceFilesystem {
		return nil
	}

	cfg := markdown.SourceConfig{
		Pattern:   c.Config.Content.Pattern,
		Recursive: c.Config.Content.Recursive,
	}
	logger := logging.SourcesLogger(c.loggerProvider)

	var (
		source *markdown.Source
		err    error
	)
	if c.contentFS != nil {
		source, err = markdown.NewSource(c.contentFS, cfg, logger)
	} else {
		source, err = markdown.NewDirSource(c.Config.Content.Dir, cfg, logger)
	}
	if err != nil {
		return err
	}
	c.source = source
	return nil
}

func (c *Container) configureCommands() error {
	sources := map[string]interfaces.DocumentSource{}
	if c.source != nil {
		sources[coursescmd.SourceFilesystem] = c.source
	}
	if c.repository != nil {
		sources[coursescmd.SourceRepository] = c.repository
	}

	var registry CommandRegistry
	if c.Config.Features.Commands {
		registry = c.commandRegistry
	}
	set, err := coursescmd.RegisterCourseCommands(registry, c.indexer, sources, c.loggerProvider, coursescmd.FeatureGates{
		CommandsEnabled: func() bool { return c.Config.Features.Commands },
	})
	if err != nil {
		return err
	}
	c.commands = set

	if c.Config.Commands.AutoRegisterCron && c.cronRegistrar != nil {
		cronCfg := command.HandlerConfig{Expression: c.Config.Commands.RebuildSchedule}
		msg := coursescmd.RebuildIndexCommand{Source: c.sourceName(), Reason: "cron"}
		if err := coursescmd.RegisterRebuildCron(c.cronRegistrar, set.Rebuild, cronCfg, msg); err != nil {
			return fmt.Errorf("di: register rebuild cron: %w", err)
		}
	}
	return nil
}

// Load builds the index from the configured source, creating the document
// table first when the repository is Bun backed.
func (c *Container) Load(ctx context.Context) error {
	if err := c.ensureSchema(ctx); err != nil {
		return err
	}
	return c.Reload(ctx, "load")
}

// Reload rebuilds the shared index. With the commands feature enabled the
// rebuild runs through the command handler.
func (c *Container) Reload(ctx context.Context, reason string) error {
	if c.Config.Features.Commands {
		return c.commands.Rebuild.Execute(ctx, coursescmd.RebuildIndexCommand{
			Source: c.sourceName(),
			Reason: reason,
		})
	}
	return c.indexer.Load(ctx, c.activeSource())
}

// Start begins background reloads: filesystem changes when the watch
// feature is enabled and repository change events when the repository is
// the active source.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	if c.Config.Features.Watch && c.sourceName() == coursescmd.SourceFilesystem {
		w, err := watch.New(watch.Config{
			Dir:           c.Config.Content.Dir,
			Pattern:       c.Config.Content.Pattern,
			DebounceDelay: c.Config.Watch.DebounceDelay,
		}, logging.WatchLogger(c.loggerProvider))
		if err != nil {
			cancel()
			return err
		}
		events, err := w.Start(ctx)
		if err != nil {
			cancel()
			return err
		}
		c.watcher = w
		c.wg.Add(1)
		go c.reloadOnWatch(ctx, events)
	}

	if c.repository != nil && c.sourceName() == coursescmd.SourceRepository {
		changes, err := c.repository.Subscribe(ctx)
		if err != nil {
			cancel()
			if c.watcher != nil {
				_ = c.watcher.Stop()
				c.watcher = nil
			}
			return err
		}
		c.wg.Add(1)
		go c.reloadOnChange(ctx, changes)
	}

	c.cancel = cancel
	return nil
}

// Stop cancels background reloads and waits for them to exit.
func (c *Container) Stop() error {
	c.mu.Lock()
	cancel, w := c.cancel, c.watcher
	c.cancel, c.watcher = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	var err error
	if w != nil {
		err = w.Stop()
	}
	c.wg.Wait()
	return err
}

func (c *Container) reloadOnWatch(ctx context.Context, events <-chan watch.Event) {
	defer c.wg.Done()
	for evt := range events {
		if evt.Err != nil {
			continue
		}
		if err := c.Reload(ctx, "watch"); err != nil && ctx.Err() == nil {
			c.logger.Error("courses.container.reload.failed", "reason", "watch", "error", err)
		}
	}
}

func (c *Container) reloadOnChange(ctx context.Context, changes <-chan documents.ChangeEvent) {
	defer c.wg.Done()
	for evt := range changes {
		if err := c.Reload(ctx, "repository."+string(evt.Type)); err != nil && ctx.Err() == nil {
			c.logger.Error("courses.container.reload.failed", "reason", "repository", "error", err)
		}
	}
}

func (c *Container) ensureSchema(ctx context.Context) error {
	bunRepo, ok := c.repository.(*documents.BunRepository)
	if !ok {
		return nil
	}
	c.schemaOnce.Do(func() {
		c.schemaErr = bunRepo.EnsureSchema(ctx)
	})
	return c.schemaErr
}

func (c *Container) sourceName() string {
	if strings.EqualFold(strings.TrimSpace(c.Config.Content.Source), runtimeconfig.SourceRepository) {
		return coursescmd.SourceRepository
	}
	return coursescmd.SourceFilesystem
}

func (c *Container) activeSource() interfaces.DocumentSource {
	if c.sourceName() == coursescmd.SourceRepository {
		return c.repository
	}
	return c.source
}

// Indexer returns the shared course index.
func (c *Container) Indexer() *courses.Indexer {
	return c.indexer
}

// Renderer returns the course renderer.
func (c *Container) Renderer() *markdown.Renderer {
	return c.renderer
}

// Repository returns the document repository, or nil when the repository
// feature is disabled.
func (c *Container) Repository() documents.Repository {
	return c.repository
}

// Commands returns the command handlers built for the container.
func (c *Container) Commands() *coursescmd.HandlerSet {
	return c.commands
}

// LoggerProvider returns the configured provider, which may be nil.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func parseOptions(cfg runtimeconfig.MarkdownParserConfig) interfaces.ParseOptions {
	return interfaces.ParseOptions{
		Extensions: append([]string(nil), cfg.Extensions...),
		Sanitize:   cfg.Sanitize,
		HardWraps:  cfg.HardWraps,
		SafeMode:   cfg.SafeMode,
	}
}
