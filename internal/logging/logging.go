// Package logging builds the notifier's diagnostic logger. The library
// itself defaults to a no-op logger — a reporting client must never spam
// its host application's output — so this package is mainly for the CLI
// and for hosts that want to see delivery activity.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a console zap logger at the given level, writing to stderr
// so it never mixes with payload output on stdout.
func New(level zapcore.Level) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		// The production config only fails on bad output paths, which
		// "stderr" is not; fall back rather than propagate.
		return zap.NewNop()
	}
	return logger
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to a
// zap level. Unknown strings default to warn.
func ParseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
