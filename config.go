package courses

import "github.com/goliatone/go-courses/internal/runtimeconfig"

var (
	ErrContentSourceUnknown         = runtimeconfig.ErrContentSourceUnknown
	ErrContentDirRequired           = runtimeconfig.ErrContentDirRequired
	ErrContentPatternInvalid        = runtimeconfig.ErrContentPatternInvalid
	ErrRepositoryFeatureRequired    = runtimeconfig.ErrRepositoryFeatureRequired
	ErrStorageDriverUnknown         = runtimeconfig.ErrStorageDriverUnknown
	ErrWatchRequiresFilesystem      = runtimeconfig.ErrWatchRequiresFilesystem
	ErrWatchDebounceInvalid         = runtimeconfig.ErrWatchDebounceInvalid
	ErrCacheRequiresRepository      = runtimeconfig.ErrCacheRequiresRepository
	ErrCacheTTLInvalid              = runtimeconfig.ErrCacheTTLInvalid
	ErrCommandsCronRequiresCommands = runtimeconfig.ErrCommandsCronRequiresCommands
	ErrCommandsCronScheduleRequired = runtimeconfig.ErrCommandsCronScheduleRequired
	ErrLoggingProviderRequired      = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown       = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid          = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid         = runtimeconfig.ErrLoggingFormatInvalid
)

const (
	SourceFilesystem = runtimeconfig.SourceFilesystem
	SourceRepository = runtimeconfig.SourceRepository
)

type (
	Config               = runtimeconfig.Config
	ContentConfig        = runtimeconfig.ContentConfig
	StorageConfig        = runtimeconfig.StorageConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	WatchConfig          = runtimeconfig.WatchConfig
	CacheConfig          = runtimeconfig.CacheConfig
	Features             = runtimeconfig.Features
	CommandsConfig       = runtimeconfig.CommandsConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
