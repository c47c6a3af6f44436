package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger for the given environment. local logs everything
// down to debug, development uses the development preset and anything else
// gets the production preset.
func New(env string) (*zap.Logger, error) {
	switch env {
	case "local":
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	case "development":
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}

// Sugared is a shortcut for callers that only want the sugared API
func Sugared(env string) *zap.SugaredLogger {
	logger, err := New(env)
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
