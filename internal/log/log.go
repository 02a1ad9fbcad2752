// Package log is a thin wrapper around zap giving the pipeline a shared
// structured logger.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = mustLogger()

func mustLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zap.Must(cfg.Build(zap.AddCallerSkip(1)))
}

// L returns the underlying zap logger.
func L() *zap.Logger {
	return logger
}

// Replace swaps the package logger, returning the previous one. Tests use
// this to silence or capture output.
func Replace(l *zap.Logger) *zap.Logger {
	old := logger
	logger = l
	return old
}

func Debug(msg string, fields ...zap.Field) { logger.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { logger.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { logger.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { logger.Error(msg, fields...) }

// Sync flushes buffered log entries.
func Sync() error {
	return logger.Sync()
}
