package xlog

import (
	antsv2 "github.com/panjf2000/ants/v2"
	"go.uber.org/zap/zapcore"
)

var _ antsv2.Logger = (*AntsXLogger)(nil)

// AntsXLogger receives the pool messages, ants only prints on worker
// panics, so they are logged as errors.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Logf(zapcore.ErrorLevel, format, args...)
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	if logger == nil {
		return &AntsXLogger{}
	}
	return &AntsXLogger{logger: newComponentLogger(logger, "Ants")}
}
