package core

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record and reports itself disabled so callers
// skip formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs the package-wide default logger used by channels created
// without WithLogger. Pass nil to restore silent behavior.
//
// Levels:
//   - [slog.LevelDebug]: committed mutations and outbound messages
//   - [slog.LevelInfo]: lifecycle transitions (started, ready, closed)
//   - [slog.LevelWarn]: dropped events and transport failures
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the package-wide default logger.
func Logger() *slog.Logger { return loggerPtr.Load() }
