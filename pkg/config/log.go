package config

import (
	"fmt"
	"strings"
)

// LogConfig selects the slog level. Empty means info.
type LogConfig struct {
	Level string `koanf:"level"`
}

func (c *LogConfig) String() string {
	return fmt.Sprintf("\n--- Log ---\n  level: %s\n", c.Level)
}

// Validate normalizes the level to lower case.
func (c *LogConfig) Validate() error {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	switch c.Level {
	case "":
		c.Level = "info"
		return nil
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unknown log level: %s", c.Level)
	}
}
