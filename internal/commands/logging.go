package commands

import (
	"strings"

	"github.com/goliatone/go-courses/internal/logging"
	"github.com/goliatone/go-courses/pkg/interfaces"
)

const commandLoggerRoot = "courses.commands"

// CommandLogger returns the module logger for a command type, so
// "courses.index.rebuild" logs under "courses.commands.index.rebuild".
func CommandLogger(provider interfaces.LoggerProvider, commandType string) interfaces.Logger {
	name := strings.TrimPrefix(strings.TrimSpace(commandType), "courses.")
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandLoggerRoot+"."+name)
	return logging.WithFields(logger, map[string]any{"component": "command"})
}
