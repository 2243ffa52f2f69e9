// Package logger builds the zap logger shared by the poller, the API and the CLI.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the sugared zap logger passed between packages.
type Logger struct {
	*zap.SugaredLogger
}

var (
	shared     *Logger
	sharedOnce sync.Once
)

// Get returns the process logger. Only the level given on the first call is
// honoured.
func Get(level string) *Logger {
	sharedOnce.Do(func() {
		shared = New(zap.New(stderrCore(parseLevel(level))))
	})
	return shared
}

// New adapts a zap logger, such as an observer core in tests.
func New(l *zap.Logger) *Logger {
	return &Logger{SugaredLogger: l.Sugar()}
}

// Nop discards everything.
func Nop() *Logger {
	return New(zap.NewNop())
}

// parseLevel accepts zap's level names; anything else logs at info.
func parseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
