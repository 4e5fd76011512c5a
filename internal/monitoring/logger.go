// Package monitoring holds the process-wide structured logger.
package monitoring

import (
	"io"
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.Default())
}

// Logger returns the current logger. It defaults to slog.Default().
func Logger() *slog.Logger {
	return logger.Load()
}

// SetLogger replaces the process logger. Passing nil installs a logger that
// discards everything, which is what tests usually want.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Store(l)
}
