package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Log = zap.NewNop()

	restoreStdLog = func() {}
)

type runIDKey struct{}

// Init builds the global logger and routes Beam's and the standard library's
// log output through it.
func Init(level string, development bool) error {
	var config zap.Config

	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
	}

	switch level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	l, err := config.Build()
	if err != nil {
		return err
	}

	Replace(l)
	return nil
}

// Replace swaps the global logger. Runners such as prism report job
// progress through the standard library logger, which is redirected too.
func Replace(l *zap.Logger) {
	Log = l
	RouteBeam(l)

	restoreStdLog()
	restoreStdLog = zap.RedirectStdLog(l)
}

// WithRunID returns a context carrying the id of the current run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

func WithContext(ctx context.Context) *zap.Logger {
	if runID, ok := ctx.Value(runIDKey{}).(string); ok {
		return Log.With(zap.String("run_id", runID))
	}
	return Log
}

func Close() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}
