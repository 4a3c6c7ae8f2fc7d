package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teranos/namedargs/errors"
)

// LevelEnvVar overrides the level derived from -v flags.
const LevelEnvVar = "NAMEDARGS_LOG_LEVEL"

var (
	// Global logger instance
	Logger *zap.SugaredLogger
	// JSONOutput is set when logs are JSON lines
	JSONOutput bool
)

func init() {
	// Safe no-op logger until Initialize is called, so library use never panics
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger on stderr from the JSON preference and
// the CLI verbosity count (-v, -vv). NAMEDARGS_LOG_LEVEL, when set, wins over
// the verbosity count.
func Initialize(jsonOutput bool, verbosity int) error {
	level, err := resolveLevel(verbosity, os.Getenv(LevelEnvVar))
	if err != nil {
		return err
	}
	JSONOutput = jsonOutput
	// stdout carries command output
	Logger = newLogger(zapcore.Lock(os.Stderr), jsonOutput, level).Sugar()
	return nil
}

func resolveLevel(verbosity int, override string) (zapcore.Level, error) {
	if override == "" {
		return VerbosityToLevel(verbosity), nil
	}
	level, err := zapcore.ParseLevel(override)
	if err != nil {
		return zapcore.InfoLevel, errors.WithHintf(
			errors.Wrapf(err, "invalid %s", LevelEnvVar),
			"use one of debug, info, warn, error")
	}
	return level, nil
}

func newLogger(w zapcore.WriteSyncer, jsonOutput bool, level zapcore.Level) *zap.Logger {
	var encoder zapcore.Encoder
	if jsonOutput {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cfg.CallerKey = ""
		encoder = zapcore.NewConsoleEncoder(cfg)
	}
	return zap.New(zapcore.NewCore(encoder, w, level))
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// Infow logs an info message with structured fields
func Infow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Infow(msg, keysAndValues...)
	}
}

// Errorw logs an error message with structured fields
func Errorw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Errorw(msg, keysAndValues...)
	}
}

// Warnw logs a warning message with structured fields
func Warnw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Warnw(msg, keysAndValues...)
	}
}

// Debugw logs a debug message with structured fields
func Debugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Debugw(msg, keysAndValues...)
	}
}
