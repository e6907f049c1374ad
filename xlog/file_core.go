package xlog

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
)

type FileCoreConfig struct {
	FilePath string `json:"filePath" yaml:"filePath"`
	Filename string `json:"filename" yaml:"filename"`
}

func defaultFileCoreConfig() *FileCoreConfig {
	return &FileCoreConfig{
		FilePath: os.TempDir(),
		Filename: filepath.Base(os.Args[0]) + "_xlog.log",
	}
}

// newFileCore opens the log file eagerly and reports the handle to
// onOpen, the logger closes it on Close.
func newFileCore(cfg *FileCoreConfig, onOpen func(io.Closer)) xLogCoreConstructor {
	return func(
		lvlEnabler zapcore.LevelEnabler,
		encoder LogEncoderType,
		lvlEnc zapcore.LevelEncoder,
		tsEnc zapcore.TimeEncoder,
	) (xLogCore, error) {
		if cfg == nil {
			cfg = defaultFileCoreConfig()
		}
		log, err := openSingleLog(cfg)
		if err != nil {
			return nil, err
		}
		if onOpen != nil {
			onOpen(log)
		}
		fileCfg := defaultCoreEncoderCfg()
		fileCfg.NameKey = coreKeyIgnored
		return newCommonCore(
			zapcore.Lock(log),
			lvlEnabler,
			encoder,
			lvlEnc,
			tsEnc,
			fileCfg,
		), nil
	}
}
