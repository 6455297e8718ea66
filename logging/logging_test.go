package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger() (*bytes.Buffer, *slog.Logger) {
	var buf bytes.Buffer
	return &buf, slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggerWritesLocalEntries(t *testing.T) {
	buf, sl := newBufferLogger()
	logger := NewLogger("dispatcher", nil, sl)

	logger.Info("endpoint registered", "pattern", "/api/users/:id")

	line := buf.String()
	require.NotEmpty(t, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(line)), &entry))
	assert.Equal(t, "endpoint registered", entry["msg"])
	assert.Equal(t, "dispatcher", entry["component"])
	assert.Equal(t, "/api/users/:id", entry["pattern"])
}

func TestLoggerErrorIncludesError(t *testing.T) {
	buf, sl := newBufferLogger()
	logger := NewLogger("server", nil, sl)

	logger.Error("dispatch failed", fmt.Errorf("boom"))

	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), "dispatch failed")
}

func TestLoggerNilSinksDoNotPanic(t *testing.T) {
	logger := NewLogger("quiet", nil, nil)

	logger.Debug("a")
	logger.Info("b")
	logger.Warn("c")
	logger.Error("d", fmt.Errorf("e"))
}

func TestNamedSharesSinks(t *testing.T) {
	buf, sl := newBufferLogger()
	logger := NewLogger("gateway", nil, sl)

	sub := logger.Named("poller")
	sub.Info("waiting")

	assert.Contains(t, buf.String(), `"component":"poller"`)
}

func TestLogEntryMarshal(t *testing.T) {
	entry := LogEntry{
		Timestamp: "2026-08-30T12:00:00Z",
		Level:     LogLevelError,
		Component: "dispatcher",
		Message:   "queue full",
		Stack:     "detail",
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"ERROR"`)
	assert.Contains(t, string(data), `"component":"dispatcher"`)
}
