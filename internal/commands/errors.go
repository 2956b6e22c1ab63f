package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to command errors.
const (
	CodeInvalidCommand = "COURSES_COMMAND_INVALID"
	CodeCancelled      = "COURSES_COMMAND_CANCELLED"
	CodeTimedOut       = "COURSES_COMMAND_TIMED_OUT"
	CodeFailed         = "COURSES_COMMAND_FAILED"
)

type failure struct {
	category goerrors.Category
	code     string
	message  string
}

var (
	invalidCommand   = failure{goerrors.CategoryValidation, CodeInvalidCommand, "course command rejected"}
	cancelledCommand = failure{goerrors.CategoryCommand, CodeCancelled, "course command cancelled"}
	timedOutCommand  = failure{goerrors.CategoryCommand, CodeTimedOut, "course command timed out"}
	failedCommand    = failure{goerrors.CategoryCommand, CodeFailed, "course command failed"}
)

// classify maps an execution error to its failure kind and telemetry status.
func classify(err error) (failure, TelemetryStatus) {
	switch {
	case errors.Is(err, context.Canceled):
		return cancelledCommand, TelemetryStatusInterrupted
	case errors.Is(err, context.DeadlineExceeded):
		return timedOutCommand, TelemetryStatusInterrupted
	default:
		return failedCommand, TelemetryStatusFailed
	}
}

// wrap tags err with the failure category, code and command type. Errors
// already carrying a go-errors category pass through.
func (f failure) wrap(err error, commandType string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, f.category, f.message).
		WithTextCode(f.code).
		WithMetadata(map[string]any{"command": commandType})
}
