// Package logging adapts zap to the service Logger interface.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger implements core.Logger over a zap SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a production JSON logger at the given level ("debug", "info",
// "warn" or "error"; empty means info).
func New(level string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.NewProductionConfig()
	config.EncoderConfig = encoderConfig
	config.Level = zap.NewAtomicLevelAt(lvl)

	base, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return Wrap(base), nil
}

// Wrap adapts an existing zap logger.
func Wrap(base *zap.Logger) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{sugar: base.Sugar()}
}

// ParseLevel maps a level name onto a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
	return lvl, nil
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, keysAndValues ...any) { l.sugar.Debugw(msg, keysAndValues...) }

// Info logs an info message.
func (l *Logger) Info(msg string, keysAndValues ...any) { l.sugar.Infow(msg, keysAndValues...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, keysAndValues ...any) { l.sugar.Warnw(msg, keysAndValues...) }

// Error logs an error message.
func (l *Logger) Error(msg string, keysAndValues ...any) { l.sugar.Errorw(msg, keysAndValues...) }

// With returns a logger carrying additional structured context.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.sugar.Sync() }
