package coursescmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-courses/internal/commands"
	"github.com/goliatone/go-courses/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the handlers produced by RegisterCourseCommands.
type HandlerSet struct {
	Rebuild *RebuildIndexHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	rebuildHandlerOpts []commands.HandlerOption[RebuildIndexCommand]
}

// WithRebuildHandlerOptions forwards options to the RebuildIndexHandler constructor.
func WithRebuildHandlerOptions(opts ...commands.HandlerOption[RebuildIndexCommand]) Option {
	return func(cfg *options) {
		cfg.rebuildHandlerOpts = append(cfg.rebuildHandlerOpts, opts...)
	}
}

// RegisterCourseCommands builds the course command handlers and registers
// them with reg when it is non-nil.
func RegisterCourseCommands(reg CommandRegistry, index IndexLoader, sources map[string]interfaces.DocumentSource, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if index == nil {
		return nil, errors.New("courses command registration: index is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, RebuildIndexCommand{}.Type())
	rebuild := NewRebuildIndexHandler(index, sources, logger, gates, cfg.rebuildHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(rebuild); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{Rebuild: rebuild}, nil
}

// RegisterRebuildCron schedules handler with a cron registrar. Each tick runs
// with a background context.
func RegisterRebuildCron(reg CronRegistrar, handler *RebuildIndexHandler, cfg command.HandlerConfig, msg RebuildIndexCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
