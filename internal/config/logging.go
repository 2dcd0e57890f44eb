package config

import (
	"fmt"

	"reverendo/internal/logging"
)

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Validate rejects levels the logger does not understand.
func (c LoggingConfig) Validate() error {
	if _, err := logging.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}
