// Package log provides the process-wide structured logger used by every
// discovery component. It wraps zap so callers never import zap directly.
package log

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used throughout the discovery packages.
type Logger interface {
	Info(fields map[string]any, msg string)
	Error(fields map[string]any, msg string)
	Debug(fields map[string]any, msg string)
	Warn(fields map[string]any, msg string)
	Fatal(fields map[string]any, msg string)
}

var global Logger = newZapLogger(false, zapcore.InfoLevel)

// SetLogger replaces the global logger. Useful for tests.
func SetLogger(l Logger) { global = l }

// Get returns the current global logger.
func Get() Logger { return global }

// Configure builds the global logger for the given environment ("dev" or
// "prod") and level ("debug", "info", "warn", "error"). On a bad level it
// falls back to info and never returns an error — a broken log config is
// not allowed to be fatal (see SPEC_FULL.md §7).
func Configure(env, level string) {
	isDev := env != "prod"
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	global = newZapLogger(isDev, lvl)
}

func Info(fields map[string]any, msg string)  { global.Info(fields, msg) }
func Error(fields map[string]any, msg string) { global.Error(fields, msg) }
func Debug(fields map[string]any, msg string) { global.Debug(fields, msg) }
func Warn(fields map[string]any, msg string)  { global.Warn(fields, msg) }
func Fatal(fields map[string]any, msg string) { global.Fatal(fields, msg) }

type zapLogger struct {
	base *zap.Logger
}

func newZapLogger(dev bool, level zapcore.Level) Logger {
	var cfg zap.Config
	if dev {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.LevelKey = "level"

	logger, err := cfg.Build()
	if err != nil {
		return &noopLogger{}
	}
	return &zapLogger{base: logger}
}

func (l *zapLogger) Info(fields map[string]any, msg string)  { l.base.With(toFields(fields)...).Info(msg) }
func (l *zapLogger) Error(fields map[string]any, msg string) { l.base.With(toFields(fields)...).Error(msg) }
func (l *zapLogger) Debug(fields map[string]any, msg string) { l.base.With(toFields(fields)...).Debug(msg) }
func (l *zapLogger) Warn(fields map[string]any, msg string)  { l.base.With(toFields(fields)...).Warn(msg) }
func (l *zapLogger) Fatal(fields map[string]any, msg string) { l.base.With(toFields(fields)...).Fatal(msg) }

func toFields(m map[string]any) []zap.Field {
	fields := make([]zap.Field, 0, len(m))
	for k, v := range m {
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}

type noopLogger struct{}

func (n *noopLogger) Info(map[string]any, string)  {}
func (n *noopLogger) Error(map[string]any, string) {}
func (n *noopLogger) Debug(map[string]any, string) {}
func (n *noopLogger) Warn(map[string]any, string)  {}
func (n *noopLogger) Fatal(map[string]any, string) {}

// NewNoop returns a Logger that discards everything. Used in tests.
func NewNoop() Logger { return &noopLogger{} }
