package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger shared by every engine package.
// The engine is silent until a logger is installed; passing nil restores silence.
// Safe for concurrent use.
//
// Levels used by the engine:
//   - slog.LevelDebug: builder decisions (ignored attachments, synthesized barriers)
//   - slog.LevelInfo: lifecycle events (device selected, loop start/stop)
//   - slog.LevelError: fatal frame errors
//
// Parameters:
//   - l: the logger to install, or nil
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the logger installed with SetLogger.
//
// Returns:
//   - *slog.Logger: the current logger, never nil
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// ReplaceLogger installs l like SetLogger and returns the logger it replaced.
//
// Parameters:
//   - l: the logger to install, or nil
//
// Returns:
//   - installed: the logger now current, never nil
//   - previous: the logger it replaced
func ReplaceLogger(l *slog.Logger) (installed, previous *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	return l, loggerPtr.Swap(l)
}

// RestoreLogger reinstates previous only while installed is still the current logger, so a
// logger installed later is never clobbered.
//
// Parameters:
//   - installed: the logger returned by ReplaceLogger
//   - previous: the logger it replaced
//
// Returns:
//   - bool: true if previous was reinstated
func RestoreLogger(installed, previous *slog.Logger) bool {
	return loggerPtr.CompareAndSwap(installed, previous)
}
