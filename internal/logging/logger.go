// Package logging builds the process-wide structured logger from configuration.
// Components never reach for a global logger; they receive a *zap.Logger at
// construction and use zap.NewNop() in tests.
package logging

import (
	"fmt"

	"github.com/Cyclone1070/nyx/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a zap logger configured from cfg.
// JSON output uses the production encoder; otherwise a console encoder with
// ISO8601 timestamps is used.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zcfg zap.Config
	if cfg.JSON {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Verbose bumps the level to debug regardless of configuration.
func Verbose(cfg config.LoggingConfig) config.LoggingConfig {
	cfg.Level = zapcore.DebugLevel.String()
	return cfg
}
