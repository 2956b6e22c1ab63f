package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-courses/internal/logging"
	"github.com/goliatone/go-courses/pkg/interfaces"
)

// TelemetryStatus is the outcome of a command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess TelemetryStatus = "success"
	TelemetryStatusFailed  TelemetryStatus = "failed"
	// TelemetryStatusInterrupted covers cancellation and timeouts.
	TelemetryStatusInterrupted TelemetryStatus = "interrupted"
)

const defaultOperation = "courses.command"

// TelemetryInfo describes one command execution. Index is set when the
// handler reports index statistics and the command succeeded.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Index     *interfaces.IndexStats
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked after every command execution.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs one "<operation>.completed", ".failed" or
// ".interrupted" entry per execution, with index counts on success.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(_ context.Context, _ T, info TelemetryInfo) {
		operation := info.Operation
		if operation == "" {
			operation = defaultOperation
		}

		fields := map[string]any{"duration_ms": info.Duration.Milliseconds()}
		if stats := info.Index; stats != nil {
			fields["document_count"] = stats.Documents
			fields["indexed_count"] = stats.Indexed
			fields["skipped_count"] = stats.Skipped
			fields["category_count"] = stats.Categories
		}
		entry := logging.WithFields(logging.WithFields(logger, info.Fields), fields)

		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info(operation + ".completed")
		case TelemetryStatusInterrupted:
			entry.Warn(operation+".interrupted", "error", info.Error)
		default:
			entry.Error(operation+".failed", "error", info.Error)
		}
	}
}
