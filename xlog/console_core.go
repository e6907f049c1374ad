package xlog

import (
	"io"
	"os"

	"go.uber.org/zap/zapcore"
)

// newConsoleCore writes to w, stderr when w is nil. Console output
// keeps stdout free for command results.
func newConsoleCore(w io.Writer) xLogCoreConstructor {
	return func(
		lvlEnabler zapcore.LevelEnabler,
		encoder LogEncoderType,
		lvlEnc zapcore.LevelEncoder,
		tsEnc zapcore.TimeEncoder,
	) (xLogCore, error) {
		if w == nil {
			w = os.Stderr
		}
		ws := zapcore.AddSync(w)
		if w == io.Writer(os.Stdout) || w == io.Writer(os.Stderr) {
			// fsync on a terminal fails with EINVAL.
			ws = zapcore.AddSync(struct{ io.Writer }{w})
		}
		return newCommonCore(
			zapcore.Lock(ws),
			lvlEnabler,
			encoder,
			lvlEnc,
			tsEnc,
			defaultCoreEncoderCfg(),
		), nil
	}
}
