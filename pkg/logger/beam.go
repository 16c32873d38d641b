package logger

import (
	"context"
	"strings"

	beamlog "github.com/apache/beam/sdks/v2/go/pkg/beam/log"
	"go.uber.org/zap"
)

// RouteBeam sends Beam's log output to l.
func RouteBeam(l *zap.Logger) {
	beamlog.SetLogger(NewBeamLogger(l))
}

// NewBeamLogger adapts l to Beam's log.Logger. Beam reports runner progress at
// info level, which is demoted to debug so it does not drown the stage logs.
func NewBeamLogger(l *zap.Logger) beamlog.Logger {
	return &beamLogger{l: l.Named("beam")}
}

type beamLogger struct {
	l *zap.Logger
}

func (b *beamLogger) Log(ctx context.Context, sev beamlog.Severity, calldepth int, msg string) {
	l := b.l.WithOptions(zap.AddCallerSkip(calldepth))
	if runID, ok := ctx.Value(runIDKey{}).(string); ok {
		l = l.With(zap.String("run_id", runID))
	}
	msg = strings.TrimSuffix(msg, "\n")

	switch sev {
	case beamlog.SevWarn:
		l.Warn(msg)
	case beamlog.SevError, beamlog.SevFatal:
		l.Error(msg)
	default:
		l.Debug(msg)
	}
}
