package xlog

import (
	"io"
	"os"
	"sync"

	"github.com/google/safeopen"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
)

var (
	_ io.WriteCloser      = (*singleLog)(nil)
	_ zapcore.WriteSyncer = (*singleLog)(nil)
)

// singleLog appends to one file without rotation. The file is opened
// beneath filePath, a filename escaping it by symlink or ".." is
// rejected.
type singleLog struct {
	lock     sync.Mutex
	filePath string
	filename string
	file     *os.File
	closed   bool
}

func openSingleLog(cfg *FileCoreConfig) (*singleLog, error) {
	log := &singleLog{
		filePath: cfg.FilePath,
		filename: cfg.Filename,
	}
	if log.filePath == "" {
		log.filePath = os.TempDir()
	}
	if err := os.MkdirAll(log.filePath, 0o755); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "unable to create log dir "+log.filePath)
	}
	f, err := safeopen.OpenFileBeneath(log.filePath, log.filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "unable to open log file "+log.filename)
	}
	log.file = f
	return log, nil
}

func (log *singleLog) Write(p []byte) (int, error) {
	log.lock.Lock()
	defer log.lock.Unlock()
	if log.closed {
		return 0, io.EOF
	}
	return log.file.Write(p)
}

func (log *singleLog) Sync() error {
	log.lock.Lock()
	defer log.lock.Unlock()
	if log.closed {
		return nil
	}
	return log.file.Sync()
}

// Close is idempotent.
func (log *singleLog) Close() error {
	log.lock.Lock()
	defer log.lock.Unlock()
	if log.closed {
		return nil
	}
	log.closed = true
	return log.file.Close()
}
