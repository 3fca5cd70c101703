// Package logging provides zap logger setup and HTTP request logging for
// the suggestion board.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Dev mode logs human-readable console
// output at debug; otherwise JSON at the given level (info when level is
// empty or unrecognized).
func New(devMode bool, level string) (*zap.Logger, error) {
	if devMode {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(level, zapcore.DebugLevel))
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level, zapcore.InfoLevel))
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	return cfg.Build()
}

func parseLevel(level string, fallback zapcore.Level) zapcore.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return fallback
	}
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return fallback
	}
	return lvl
}
