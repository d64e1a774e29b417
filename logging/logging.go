// Package logging builds the zap loggers used by the gomck command.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// Builds a logger at the level, one of debug, info, warn or error.
// Development loggers write human readable output and stack traces on warnings.
func New(level string, development bool) (*zap.Logger, error) {
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	config := zap.NewProductionConfig()
	if development {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = atomic
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: failed to build logger: %w", err)
	}
	return logger, nil
}
