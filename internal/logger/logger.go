package logger

import (
	"sync"
)

// Log levels understood by Get and by the `log.level` config key.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger. Only the first call decides the level.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level)
	})
	return globalLogger
}

// LevelFor maps the CLI --debug switch to a level name.
func LevelFor(debug bool) string {
	if debug {
		return DebugLevel
	}
	return InfoLevel
}
