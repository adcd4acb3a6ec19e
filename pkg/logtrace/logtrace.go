// Package logtrace provides process-wide structured logging with
// correlation-ID propagation through contexts. Logs are emitted to standard
// error so that standard output stays reserved for user-facing command text.
package logtrace

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

func toZapLevel(level slog.Level) zapcore.Level {
	switch {
	case level <= slog.LevelDebug:
		return zapcore.DebugLevel
	case level <= slog.LevelInfo:
		return zapcore.InfoLevel
	case level <= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Setup initializes the global logger. It is safe to call more than once;
// the last call wins. service and env are attached to every record.
func Setup(service, env string, level slog.Level) {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		toZapLevel(level),
	)

	l := zap.New(core).With(
		zap.String("service", service),
		zap.String("env", env),
	)

	mu.Lock()
	logger = l
	mu.Unlock()
}

// Sync flushes any buffered log entries.
func Sync() {
	mu.RLock()
	l := logger
	mu.RUnlock()
	_ = l.Sync()
}

func emit(ctx context.Context, level zapcore.Level, msg string, fields Fields) {
	mu.RLock()
	l := logger
	mu.RUnlock()

	ce := l.Check(level, msg)
	if ce == nil {
		return
	}

	zfields := make([]zap.Field, 0, len(fields)+2)
	if cid := CorrelationIDFromContext(ctx); cid != "unknown" {
		zfields = append(zfields, zap.String(FieldCorrelationID, cid))
	}
	if origin := OriginFromContext(ctx); origin != "" {
		zfields = append(zfields, zap.String(FieldOrigin, origin))
	}
	for k, v := range fields {
		zfields = append(zfields, zap.Any(k, v))
	}
	ce.Write(zfields...)
}

// Debug logs a message at debug level with structured fields.
func Debug(ctx context.Context, msg string, fields Fields) {
	emit(ctx, zapcore.DebugLevel, msg, fields)
}

// Info logs a message at info level with structured fields.
func Info(ctx context.Context, msg string, fields Fields) {
	emit(ctx, zapcore.InfoLevel, msg, fields)
}

// Warn logs a message at warn level with structured fields.
func Warn(ctx context.Context, msg string, fields Fields) {
	emit(ctx, zapcore.WarnLevel, msg, fields)
}

// Error logs a message at error level with structured fields.
func Error(ctx context.Context, msg string, fields Fields) {
	emit(ctx, zapcore.ErrorLevel, msg, fields)
}

// Fatal logs a message at error level and terminates the process.
func Fatal(ctx context.Context, msg string, fields Fields) {
	emit(ctx, zapcore.ErrorLevel, msg, fields)
	Sync()
	os.Exit(1)
}
