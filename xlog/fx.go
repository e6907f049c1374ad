package xlog

import (
	"time"

	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// FxXLogger routes fx lifecycle events to the "Fx" component.
// Only the events of a provide, populate, start and stop app are kept.
type FxXLogger struct {
	logger XLogger
}

func (l *FxXLogger) hook(name, function, caller string, runtime time.Duration, err error) {
	fields := []zap.Field{
		zap.String("function", function),
		zap.String("caller", caller),
		zap.Duration("in", runtime),
	}
	if err != nil {
		l.logger.Error(err, "HOOK "+name+" failed", fields...)
		return
	}
	l.logger.Debug("HOOK "+name, fields...)
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		l.hook("OnStart", e.FunctionName, e.CallerName, e.Runtime, e.Err)
	case *fxevent.OnStopExecuted:
		l.hook("OnStop", e.FunctionName, e.CallerName, e.Runtime, e.Err)
	case *fxevent.Provided:
		if e.Err != nil {
			l.logger.Error(e.Err, "PROVIDE failed",
				zap.String("constructor", e.ConstructorName),
				zap.Strings("stacktrace", e.StackTrace),
			)
			return
		}
		l.logger.Debug("PROVIDE",
			zap.Strings("types", e.OutputTypeNames),
			zap.String("constructor", e.ConstructorName),
		)
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error(e.Err, "INVOKE failed",
				zap.String("function", e.FunctionName),
				zap.String("trace", e.Trace),
			)
		}
	case *fxevent.RollingBack:
		l.logger.Warn("start failed, rolling back", zap.Error(e.StartErr))
	case *fxevent.RolledBack:
		if e.Err != nil {
			l.logger.Error(e.Err, "rollback failed")
		}
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error(e.Err, "start failed")
			return
		}
		l.logger.Debug("RUNNING")
	case *fxevent.Stopped:
		if e.Err != nil {
			l.logger.Error(e.Err, "stop failed")
		}
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			l.logger.Error(e.Err, "custom logger failed")
			return
		}
		l.logger.Debug("LOGGER", zap.String("constructor", e.ConstructorName))
	default:
	}
}

var _ fxevent.Logger = (*FxXLogger)(nil)

func NewFxXLogger(logger XLogger) *FxXLogger {
	if logger == nil {
		return &FxXLogger{}
	}
	return &FxXLogger{logger: newComponentLogger(logger, "Fx")}
}
