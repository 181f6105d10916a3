// Package logging builds the engine's zap logger and keeps secrets out of log output.
package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New builds a logger for the given environment. Production environments get
// JSON output at info level; everything else gets the human-readable
// development encoder with debug enabled.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
