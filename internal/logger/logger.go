package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Logger provides leveled logging tagged with a component name.
type Logger struct {
	MinLevel LogLevel
	mu       sync.Mutex
	out      *log.Logger
}

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// New returns a logger writing to w; a nil writer means stderr.
func New(level LogLevel, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		MinLevel: level,
		out:      log.New(w, "", 0),
	}
}

// ParseLevel understands debug, info, warn/warning and error. Unknown values map to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Discard is handy in tests.
func Discard() *Logger {
	return New(LevelError+1, io.Discard)
}
