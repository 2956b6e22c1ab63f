package runtimeconfig

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

var ErrContentSourceUnknown = errors.New("courses config: content source is invalid")
var ErrContentDirRequired = errors.New("courses config: content directory is required for the filesystem source")
var ErrContentPatternInvalid = errors.New("courses config: content pattern is invalid")

// ErrRepositoryFeatureRequired keeps the repository source behind its feature flag.
var ErrRepositoryFeatureRequired = errors.New("courses config: repository feature must be enabled to use the repository source")
var ErrStorageDriverUnknown = errors.New("courses config: storage driver is invalid")

// ErrWatchRequiresFilesystem indicates the watcher was enabled without a directory to watch.
var ErrWatchRequiresFilesystem = errors.New("courses config: watch feature requires the filesystem source")
var ErrWatchDebounceInvalid = errors.New("courses config: watch debounce delay must be zero or positive")

// ErrCacheRequiresRepository keeps the document cache behind the repository feature.
var ErrCacheRequiresRepository = errors.New("courses config: cache requires the repository feature")
var ErrCacheTTLInvalid = errors.New("courses config: cache ttl must be zero or positive")

// ErrCommandsCronRequiresCommands ensures cron wiring only runs when commands are enabled.
var ErrCommandsCronRequiresCommands = errors.New("courses config: command cron auto-registration requires the commands feature")
var ErrCommandsCronScheduleRequired = errors.New("courses config: command cron auto-registration requires a rebuild schedule")

var ErrLoggingProviderRequired = errors.New("courses config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("courses config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("courses config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("courses config: logging format is invalid")

// Content source identifiers.
const (
	SourceFilesystem = "filesystem"
	SourceRepository = "repository"
)

// Config aggregates feature flags and adapter bindings for the course module.
type Config struct {
	Content  ContentConfig
	Storage  StorageConfig
	Markdown MarkdownConfig
	Watch    WatchConfig
	Cache    CacheConfig
	Features Features
	Commands CommandsConfig
	Logging  LoggingConfig
}

// ContentConfig selects where course documents come from.
type ContentConfig struct {
	Dir       string
	Pattern   string
	Recursive bool
	// Source is "filesystem" or "repository".
	Source string
}

// StorageConfig names the SQL driver backing the document repository.
type StorageConfig struct {
	Driver string
}

// MarkdownConfig captures renderer behaviour.
type MarkdownConfig struct {
	Parser MarkdownParserConfig
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// WatchConfig tunes the content watcher.
type WatchConfig struct {
	DebounceDelay time.Duration
}

// CacheConfig controls the read cache in front of the Bun document repository.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// Features toggles module functionality.
type Features struct {
	Watch      bool
	Commands   bool
	Logger     bool
	Repository bool
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	AutoRegisterCron bool
	RebuildSchedule  string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns defaults for indexing a local content directory.
func DefaultConfig() Config {
	return Config{
		Content: ContentConfig{
			Dir:       "content",
			Pattern:   "*.md",
			Recursive: true,
			Source:    SourceFilesystem,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
		},
		Markdown: MarkdownConfig{
			Parser: MarkdownParserConfig{
				Extensions: []string{"gfm", "linkify", "tasklist"},
			},
		},
		Watch: WatchConfig{
			DebounceDelay: 100 * time.Millisecond,
		},
		Cache: CacheConfig{
			DefaultTTL: time.Minute,
		},
		Features: Features{
			Commands: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	source := normalize(cfg.Content.Source)
	switch source {
	case "", SourceFilesystem:
		if strings.TrimSpace(cfg.Content.Dir) == "" {
			return ErrContentDirRequired
		}
	case SourceRepository:
		if !cfg.Features.Repository {
			return ErrRepositoryFeatureRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrContentSourceUnknown, cfg.Content.Source)
	}
	if pattern := strings.TrimSpace(cfg.Content.Pattern); pattern != "" {
		if _, err := path.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("%w: %s", ErrContentPatternInvalid, pattern)
		}
	}
	if cfg.Features.Repository && !isSupportedDriver(cfg.Storage.Driver) {
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if cfg.Features.Watch && source == SourceRepository {
		return ErrWatchRequiresFilesystem
	}
	if cfg.Watch.DebounceDelay < 0 {
		return fmt.Errorf("%w: %s", ErrWatchDebounceInvalid, cfg.Watch.DebounceDelay)
	}
	if cfg.Cache.Enabled && !cfg.Features.Repository {
		return ErrCacheRequiresRepository
	}
	if cfg.Cache.DefaultTTL < 0 {
		return fmt.Errorf("%w: %s", ErrCacheTTLInvalid, cfg.Cache.DefaultTTL)
	}
	if cfg.Commands.AutoRegisterCron {
		if !cfg.Features.Commands {
			return ErrCommandsCronRequiresCommands
		}
		if strings.TrimSpace(cfg.Commands.RebuildSchedule) == "" {
			return ErrCommandsCronScheduleRequired
		}
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDriver(driver string) bool {
	switch normalize(driver) {
	case "sqlite", "sqlite3", "postgres", "postgresql", "pg":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
