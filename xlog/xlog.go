package xlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
)

// xLogger is wrapper logger of Uber zap logger.
type xLogger struct {
	logger              atomic.Pointer[zap.Logger]
	dynamicLevelEnabler zap.AtomicLevel
	closeOnce           sync.Once
	closers             []io.Closer
}

func (l *xLogger) zap() *zap.Logger {
	return l.logger.Load()
}

// IncreaseLogLevel we can increase or decrease the log level concurrently.
func (l *xLogger) IncreaseLogLevel(level zapcore.Level) {
	l.dynamicLevelEnabler.SetLevel(level)
}

func (l *xLogger) Sync() error {
	return l.logger.Load().Sync()
}

func (l *xLogger) Level() string {
	return l.dynamicLevelEnabler.Level().String()
}

// Close syncs and releases the file sinks. Component loggers own no
// sink and only sync.
func (l *xLogger) Close() error {
	err := l.Sync()
	l.closeOnce.Do(func() {
		for _, c := range l.closers {
			err = multierr.Append(err, c.Close())
		}
	})
	return err
}

func (l *xLogger) Debug(msg string, fields ...zap.Field) {
	l.logger.Load().Debug(msg, fields...)
}

func (l *xLogger) Info(msg string, fields ...zap.Field) {
	l.logger.Load().Info(msg, fields...)
}

func (l *xLogger) Warn(msg string, fields ...zap.Field) {
	l.logger.Load().Warn(msg, fields...)
}

func (l *xLogger) Error(err error, msg string, fields ...zap.Field) {
	newFields := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		newFields = append(newFields, zap.String("error", err.Error()))
	}
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

func (l *xLogger) ErrorStack(err error, msg string, fields ...zap.Field) {
	newFields := errorStackFields(err)
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

func (l *xLogger) DebugContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.logger.Load().Debug(msg, fieldsFromContext(ctx, fields)...)
}

func (l *xLogger) InfoContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.logger.Load().Info(msg, fieldsFromContext(ctx, fields)...)
}

func (l *xLogger) WarnContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.logger.Load().Warn(msg, fieldsFromContext(ctx, fields)...)
}

func (l *xLogger) ErrorContext(ctx context.Context, err error, msg string, fields ...zap.Field) {
	newFields := fieldsFromContext(ctx, nil)
	if err != nil {
		newFields = append(newFields, zap.String("error", err.Error()))
	}
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

func (l *xLogger) Logf(lvl zapcore.Level, format string, args ...any) {
	l.logger.Load().Log(lvl, fmt.Sprintf(format, args...))
}

func (l *xLogger) ErrorStackf(err error, format string, args ...any) {
	l.logger.Load().Log(zap.ErrorLevel, fmt.Sprintf(format, args...), errorStackFields(err)...)
}

// errorStackFields inlines the frames of the first infra.ErrorStack
// in the chain, a plain error is logged by its message.
func errorStackFields(err error) []zap.Field {
	if err == nil {
		return []zap.Field{}
	}
	var es infra.ErrorStack
	if errors.As(err, &es) && es != nil {
		return []zap.Field{zap.Inline(es)}
	}
	return []zap.Field{zap.String("error", err.Error())}
}

type ctxFieldsKey struct{}

// WithFields binds fields to ctx, the context log methods prepend them.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	bound := fieldsFromContext(ctx, nil)
	return context.WithValue(ctx, ctxFieldsKey{}, append(bound, fields...))
}

func fieldsFromContext(ctx context.Context, extra []zap.Field) []zap.Field {
	if ctx == nil {
		return extra
	}
	bound, _ := ctx.Value(ctxFieldsKey{}).([]zap.Field)
	newFields := make([]zap.Field, 0, len(bound)+len(extra))
	newFields = append(newFields, bound...)
	return append(newFields, extra...)
}

type loggerCfg struct {
	encoderType      *LogEncoderType
	lvlEncoder       zapcore.LevelEncoder
	tsEncoder        zapcore.TimeEncoder
	level            *zapcore.Level
	coreConstructors []xLogCoreConstructor
	fileCores        []*FileCoreConfig
}

func (cfg *loggerCfg) apply(l *xLogger) ([]xLogCore, error) {
	encoder := JSON
	if cfg.encoderType != nil {
		encoder = *cfg.encoderType
	}

	if cfg.level != nil {
		l.dynamicLevelEnabler = zap.NewAtomicLevelAt(*cfg.level)
	} else {
		l.dynamicLevelEnabler = zap.NewAtomicLevelAt(ParseLogLevel(os.Getenv("XLOG_LVL")).zapLevel())
	}

	if cfg.lvlEncoder == nil {
		cfg.lvlEncoder = zapcore.CapitalLevelEncoder
	}

	if cfg.tsEncoder == nil {
		cfg.tsEncoder = zapcore.ISO8601TimeEncoder
	}

	constructors := cfg.coreConstructors
	for _, fc := range cfg.fileCores {
		constructors = append(constructors, newFileCore(fc, func(c io.Closer) {
			l.closers = append(l.closers, c)
		}))
	}
	if len(constructors) == 0 {
		constructors = []xLogCoreConstructor{newConsoleCore(nil)}
	}

	cores := make([]xLogCore, 0, len(constructors))
	for _, cc := range constructors {
		core, err := cc(
			l.dynamicLevelEnabler,
			encoder,
			cfg.lvlEncoder,
			cfg.tsEncoder,
		)
		if err != nil {
			for _, c := range l.closers {
				err = multierr.Append(err, c.Close())
			}
			return nil, err
		}
		cores = append(cores, core)
	}
	return cores, nil
}

type XLoggerOption func(*loggerCfg) error

func NewXLogger(opts ...XLoggerOption) (XLogger, error) {
	cfg := &loggerCfg{}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(cfg); err != nil {
			return nil, err
		}
	}
	xl := &xLogger{}
	cores, err := cfg.apply(xl)
	if err != nil {
		return nil, err
	}

	// Disable zap logger error stack.
	l := zap.New(
		XLogTeeCore(cores...),
		zap.AddCallerSkip(1), // Use caller filename as service
		zap.AddCaller(),
	)
	xl.logger.Store(l)
	return xl, nil
}

// WithXLoggerWriter adds a console core writing to w.
func WithXLoggerWriter(w io.Writer) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if w == nil {
			return infra.NewErrorStack("[xlog] nil writer")
		}
		cfg.coreConstructors = append(cfg.coreConstructors, newConsoleCore(w))
		return nil
	}
}

func WithXLoggerStdOutWriter() XLoggerOption {
	return WithXLoggerWriter(os.Stdout)
}

func WithXLoggerStdErrWriter() XLoggerOption {
	return WithXLoggerWriter(os.Stderr)
}

func WithXLoggerFileWriter(coreCfg *FileCoreConfig) XLoggerOption {
	return func(cfg *loggerCfg) error {
		cfg.fileCores = append(cfg.fileCores, coreCfg)
		return nil
	}
}

func WithXLoggerEncoder(logEnc LogEncoderType) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if logEnc >= _encMax {
			return infra.NewErrorStack("[xlog] unknown xlogger encoder")
		}
		cfg.encoderType = &logEnc
		return nil
	}
}

func WithXLoggerLevel(lvl LogLevel) XLoggerOption {
	return func(cfg *loggerCfg) error {
		_lvl := lvl.zapLevel()
		cfg.level = &_lvl
		return nil
	}
}

func WithXLoggerLevelEncoder(lvlEnc zapcore.LevelEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if lvlEnc == nil {
			lvlEnc = zapcore.CapitalColorLevelEncoder
		}
		cfg.lvlEncoder = lvlEnc
		return nil
	}
}

func WithXLoggerTimeEncoder(tsEnc zapcore.TimeEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if tsEnc == nil {
			tsEnc = zapcore.ISO8601TimeEncoder
		}
		cfg.tsEncoder = tsEnc
		return nil
	}
}

// NewNopXLogger discards everything, for tests and library callers
// that do not care about logs.
func NewNopXLogger() XLogger {
	xl := &xLogger{dynamicLevelEnabler: zap.NewAtomicLevelAt(zapcore.ErrorLevel)}
	xl.logger.Store(zap.NewNop())
	return xl
}
