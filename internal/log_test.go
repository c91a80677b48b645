package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" debug "))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogLevelInfo, &buf)

	logger.Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	logger.Info("headers: %v", []string{"cat", "x"})
	assert.Contains(t, buf.String(), "headers: [cat x]")
	assert.Contains(t, buf.String(), "level=INFO")
}

func TestLoggerTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogLevelTrace, &buf).With("run", "abc")

	logger.Trace("row %d", 7)
	assert.Contains(t, buf.String(), "row 7")
	assert.Contains(t, buf.String(), "run=abc")
}
