package pngflate

import (
	"log/slog"
	"sync"
)

var (
	loggerMu sync.RWMutex
	logger   = slog.New(slog.DiscardHandler)
)

// SetLogger installs l as the package-wide diagnostic logger. Passing nil
// restores the default (discard) logger. Logging never affects decode
// outcomes — it is purely observational.
func SetLogger(l *slog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger = l
}

func currentLogger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}
