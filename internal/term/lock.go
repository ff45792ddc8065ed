package term

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// StdoutLock is the process-wide lock for code writing to os.Stdout.
// Anything that prints while a renderer is live should hold it.
var StdoutLock sync.Locker = &sync.Mutex{}

// FileLock serializes writers across processes sharing one terminal.
// It takes an in-process lock first, then an advisory lock on a file.
//
// If the file lock cannot be taken, Lock still returns holding the
// in-process lock and OnError is called; output is never blocked on it.
type FileLock struct {
	inner   sync.Locker
	fl      *flock.Flock
	held    bool
	OnError func(error)
}

// NewFileLock creates a FileLock on path, layered over inner.
// A nil inner defaults to StdoutLock.
func NewFileLock(path string, inner sync.Locker) (*FileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	if inner == nil {
		inner = StdoutLock
	}
	return &FileLock{
		inner: inner,
		fl:    flock.New(path),
	}, nil
}

// Lock implements sync.Locker.
func (l *FileLock) Lock() {
	l.inner.Lock()
	if err := l.fl.Lock(); err != nil {
		l.held = false
		if l.OnError != nil {
			l.OnError(err)
		}
		return
	}
	l.held = true
}

// Unlock implements sync.Locker.
func (l *FileLock) Unlock() {
	if l.held {
		if err := l.fl.Unlock(); err != nil && l.OnError != nil {
			l.OnError(err)
		}
		l.held = false
	}
	l.inner.Unlock()
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.fl.Path()
}

// Close releases the lock file handle.
func (l *FileLock) Close() error {
	return l.fl.Close()
}
