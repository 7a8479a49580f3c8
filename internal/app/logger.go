package app

import (
	"strings"

	"github.com/charlesng35/usercache/pkg/logger"
)

// ConfigureLogging initialises the global logger with the provided level and
// encoding, defaulting to info and json.
func ConfigureLogging(level, format string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	return logger.Init(level, logger.WithFormat(strings.TrimSpace(format)))
}
