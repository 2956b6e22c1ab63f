package coursescmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const rebuildIndexMessageType = "courses.index.rebuild"

// Source names accepted by RebuildIndexCommand.
const (
	SourceFilesystem = "filesystem"
	SourceRepository = "repository"
)

// RebuildIndexCommand discovers documents from Source and rebuilds the shared
// course index from them.
type RebuildIndexCommand struct {
	// Source selects where documents are discovered: "filesystem" or "repository".
	Source string `json:"source"`
	// Reason is recorded with the execution logs, e.g. "watch" or "manual".
	Reason string `json:"reason,omitempty"`
}

// Type implements command.Message.
func (RebuildIndexCommand) Type() string { return rebuildIndexMessageType }

// Validate ensures the source is one the handler knows about.
func (cmd RebuildIndexCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Source,
			validation.Required.ErrorObject(
				validation.NewError("courses.index.rebuild.source_required", "source is required"),
			),
			validation.In(SourceFilesystem, SourceRepository).ErrorObject(
				validation.NewError("courses.index.rebuild.source_invalid", "source must be filesystem or repository"),
			),
		),
		validation.Field(&cmd.Reason, validation.Length(0, 128)),
	)
}
