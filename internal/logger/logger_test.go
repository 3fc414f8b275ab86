package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn, &buf)

	l.Info("CSV", "should not appear")
	l.Warn("CSV", "read failed: path=%s", "data.csv")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "[WARN] [CSV] read failed: path=data.csv")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("nope"))
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Info("x", "y") })
}
