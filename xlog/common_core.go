package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
)

var _ xLogCore = (*commonCore)(nil)

type commonCore struct {
	lvlEnabler zapcore.LevelEnabler
	lvlEnc     zapcore.LevelEncoder
	tsEnc      zapcore.TimeEncoder
	ws         zapcore.WriteSyncer
	enc        func(cfg zapcore.EncoderConfig) zapcore.Encoder
	core       zapcore.Core
}

func newCommonCore(
	ws zapcore.WriteSyncer,
	lvlEnabler zapcore.LevelEnabler,
	encoder LogEncoderType,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
	cfg zapcore.EncoderConfig,
) *commonCore {
	cc := &commonCore{
		lvlEnabler: lvlEnabler,
		lvlEnc:     lvlEnc,
		tsEnc:      tsEnc,
		ws:         ws,
		enc:        getEncoderByType(encoder),
	}
	cfg.EncodeLevel = lvlEnc
	cfg.EncodeTime = tsEnc
	cc.core = zapcore.NewCore(cc.enc(cfg), cc.ws, cc.lvlEnabler)
	return cc
}

func (cc *commonCore) timeEncoder() zapcore.TimeEncoder                            { return cc.tsEnc }
func (cc *commonCore) levelEncoder() zapcore.LevelEncoder                          { return cc.lvlEnc }
func (cc *commonCore) writeSyncer() zapcore.WriteSyncer                            { return cc.ws }
func (cc *commonCore) outEncoder() func(cfg zapcore.EncoderConfig) zapcore.Encoder { return cc.enc }

func (cc *commonCore) Enabled(lvl zapcore.Level) bool {
	return cc.lvlEnabler.Enabled(lvl)
}

func (cc *commonCore) With(fields []zap.Field) zapcore.Core {
	return cc.core.With(fields)
}

func (cc *commonCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return cc.core.Check(ent, ce)
}

func (cc *commonCore) Write(ent zapcore.Entry, fields []zap.Field) error {
	return cc.core.Write(ent, fields)
}

func (cc *commonCore) Sync() error {
	return cc.core.Sync()
}

// WrapCore rebuilds core with cfg keys. The sink, the encoders and
// the level enabler of core are shared.
func WrapCore(core xLogCore, cfg zapcore.EncoderConfig) (xLogCore, error) {
	if core == nil {
		return nil, infra.NewErrorStack("[xlog] logger core is nil")
	}
	cc := &commonCore{
		lvlEnabler: zap.LevelEnablerFunc(core.Enabled),
		lvlEnc:     core.levelEncoder(),
		tsEnc:      core.timeEncoder(),
		ws:         core.writeSyncer(),
		enc:        core.outEncoder(),
	}
	if cc.enc == nil {
		cc.enc = zapcore.NewJSONEncoder
	}
	cfg.EncodeLevel = cc.lvlEnc
	cfg.EncodeTime = cc.tsEnc
	cc.core = zapcore.NewCore(cc.enc(cfg), cc.ws, cc.lvlEnabler)
	return cc, nil
}

func defaultCoreEncoderCfg() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "lvl",
		TimeKey:       "ts",
		CallerKey:     "callAt",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		FunctionKey:   "fn",
		NameKey:       "component",
		EncodeName:    zapcore.FullNameEncoder,
		StacktraceKey: coreKeyIgnored,
	}
}

// Component loggers (fx, ants) drop the caller, it always points
// into the adapter.
func componentCoreEncoderCfg() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "lvl",
		TimeKey:       "ts",
		CallerKey:     coreKeyIgnored,
		FunctionKey:   coreKeyIgnored,
		NameKey:       "component",
		EncodeName:    zapcore.FullNameEncoder,
		StacktraceKey: coreKeyIgnored,
	}
}

// newComponentLogger derives a named child whose cores are rebuilt
// with the component encoder config. The level stays bound to the parent.
func newComponentLogger(parent XLogger, name string) *xLogger {
	l := &xLogger{}
	l.logger.Store(parent.
		zap().
		Named(name).
		WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			var (
				wrapped xLogCore
				err     error
			)
			switch cc := core.(type) {
			case xLogMultiCore:
				wrapped, err = WrapCores(cc, componentCoreEncoderCfg())
			case xLogCore:
				wrapped, err = WrapCore(cc, componentCoreEncoderCfg())
			default:
				return core
			}
			if err != nil {
				// impossible run to here
				panic( /* debug assertion */ err)
			}
			return wrapped
		})),
	)
	if pl, ok := parent.(*xLogger); ok {
		l.dynamicLevelEnabler = pl.dynamicLevelEnabler
	}
	return l
}
