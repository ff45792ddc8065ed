package debug

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes structured debug records to a file.
// A nil *Logger is valid and discards everything.
type Logger struct {
	logger *slog.Logger
	file   *os.File
}

var (
	defaultLogger *Logger
	mu            sync.Mutex
)

// Open creates a Logger writing to path, truncating any previous log.
func Open(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &Logger{logger: slog.New(handler), file: f}, nil
}

// Enable opens path and installs it as the default logger.
func Enable(path string) error {
	l, err := Open(path)
	if err != nil {
		return err
	}

	mu.Lock()
	prev := defaultLogger
	defaultLogger = l
	mu.Unlock()

	_ = prev.Close()
	l.Log("debug logging enabled", "path", path)
	return nil
}

// Default returns the installed logger, or nil when debugging is off.
func Default() *Logger {
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger
}

// Close closes the default logger.
func Close() {
	mu.Lock()
	l := defaultLogger
	defaultLogger = nil
	mu.Unlock()

	_ = l.Close()
}

// Enabled reports whether records are written anywhere.
func (l *Logger) Enabled() bool {
	return l != nil && l.logger != nil
}

// With returns a child logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	if !l.Enabled() {
		return l
	}
	return &Logger{logger: l.logger.With(args...)}
}

// Log writes a debug record.
func (l *Logger) Log(msg string, args ...any) {
	if !l.Enabled() {
		return
	}
	l.logger.Debug(msg, args...)
}

// Error writes an error record.
func (l *Logger) Error(msg string, err error, args ...any) {
	if !l.Enabled() {
		return
	}
	l.logger.Error(msg, append([]any{"err", err}, args...)...)
}

// Timed logs the duration of an operation. Usage:
//
//	defer log.Timed("operation name")()
func (l *Logger) Timed(name string) func() {
	if !l.Enabled() {
		return func() {}
	}

	start := time.Now()
	l.Log(name + " started")

	return func() {
		l.Log(name+" completed", "elapsed", time.Since(start))
	}
}

// Close closes the log file. Child loggers created by With share the
// parent's file and must not be used after it is closed.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
