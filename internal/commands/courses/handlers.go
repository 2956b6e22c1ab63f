package coursescmd

import (
	"context"
	"errors"
	"fmt"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-courses/internal/commands"
	"github.com/goliatone/go-courses/internal/logging"
	"github.com/goliatone/go-courses/pkg/interfaces"
)

const rebuildOperation = "courses.command.rebuild_index"

var (
	// ErrCommandsFeatureDisabled is returned when the commands feature flag is off.
	ErrCommandsFeatureDisabled = errors.New("courses command: feature disabled")
	// ErrSourceUnavailable is returned when the requested source was not wired.
	ErrSourceUnavailable = errors.New("courses command: source unavailable")
)

// IndexLoader is the part of the indexer a rebuild needs.
type IndexLoader interface {
	Load(ctx context.Context, source interfaces.DocumentSource) error
	Stats() interfaces.IndexStats
}

var _ command.Commander[RebuildIndexCommand] = (*RebuildIndexHandler)(nil)

// RebuildIndexHandler reloads the course index through the shared command
// handler foundation.
type RebuildIndexHandler struct {
	inner *commands.Handler[RebuildIndexCommand]
}

// NewRebuildIndexHandler binds a handler to index and the named sources.
func NewRebuildIndexHandler(index IndexLoader, sources map[string]interfaces.DocumentSource, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[RebuildIndexCommand]) *RebuildIndexHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RebuildIndexCommand) error {
		if !gates.commandsEnabled() {
			return ErrCommandsFeatureDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		source, ok := sources[msg.Source]
		if !ok || source == nil {
			return fmt.Errorf("%w: %s", ErrSourceUnavailable, msg.Source)
		}
		return index.Load(ctx, source)
	}

	handlerOpts := []commands.HandlerOption[RebuildIndexCommand]{
		commands.WithLogger[RebuildIndexCommand](baseLogger),
		commands.WithOperation[RebuildIndexCommand](rebuildOperation),
		commands.WithMessageFields(func(msg RebuildIndexCommand) map[string]any {
			fields := map[string]any{
				"source": msg.Source,
			}
			if msg.Reason != "" {
				fields["reason"] = msg.Reason
			}
			return fields
		}),
		commands.WithIndexStats[RebuildIndexCommand](index.Stats),
		commands.WithTelemetry(commands.DefaultTelemetry[RebuildIndexCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RebuildIndexHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RebuildIndexCommand].
func (h *RebuildIndexHandler) Execute(ctx context.Context, msg RebuildIndexCommand) error {
	return h.inner.Execute(ctx, msg)
}
