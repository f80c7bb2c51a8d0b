package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twxcli/internal/config"
)

// lastEntry decodes the last JSON line written to the log.
func lastEntry(t *testing.T, content []byte) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "nested", "test.log")
	var console bytes.Buffer

	logger, err := InitializeLoggerWithConsole(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "both",
		FilePath: logFile,
	}, &console)
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	entry := lastEntry(t, content)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, string(content), console.String())
}

func TestInitializeLoggerOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	var first, second bytes.Buffer
	logger1, err := InitializeLoggerWithConsole(config.LoggingConfig{Level: "info", Output: "console"}, &first)
	require.NoError(t, err)
	logger2, err := InitializeLoggerWithConsole(config.LoggingConfig{Level: "info", Output: "console"}, &second)
	require.NoError(t, err)

	assert.Same(t, logger1, logger2)
	logger2.Info("hello")
	assert.NotEmpty(t, first.String())
	assert.Empty(t, second.String())
}

func TestTraceIDInjection(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	var console bytes.Buffer
	_, err := InitializeLoggerWithConsole(config.LoggingConfig{Level: "debug", Output: "console"}, &console)
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "test-trace-123")
	GetLogger().InfoContext(ctx, "test with trace")

	assert.Equal(t, "test-trace-123", lastEntry(t, console.Bytes())["trace_id"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		logAt    slog.Level
		expected string
		written  bool
	}{
		{"debug", slog.LevelDebug, "DEBUG", true},
		{"info", slog.LevelInfo, "INFO", true},
		{"warning", slog.LevelWarn, "WARN", true},
		{"error", slog.LevelError, "ERROR", true},
		{"warn", slog.LevelInfo, "", false},
		{"bogus", slog.LevelDebug, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			ResetLoggerForTesting()
			defer ResetLoggerForTesting()

			var console bytes.Buffer
			logger, err := InitializeLoggerWithConsole(config.LoggingConfig{Level: tt.level, Output: "console"}, &console)
			require.NoError(t, err)

			logger.Log(context.Background(), tt.logAt, "test")

			if !tt.written {
				assert.Empty(t, console.String())
				return
			}
			assert.Equal(t, tt.expected, lastEntry(t, console.Bytes())["level"])
		})
	}
}

func TestOpenLogFileFailure(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := InitializeLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(blocker, "app.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log file")
}

func TestContextHelpers(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	traceID := GetTraceID(ctx)
	assert.NotEmpty(t, traceID)

	assert.Equal(t, traceID, GetTraceID(EnsureTraceID(ctx)))
	assert.NotEqual(t, NewTraceID(), NewTraceID())
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	WithComponent(logger, "scraper").Info("test message")
	assert.Equal(t, "scraper", lastEntry(t, buf.Bytes())["component"])

	buf.Reset()
	WithReport(logger, "twse-market-trades", "2024-01-02").Info("report test")
	entry := lastEntry(t, buf.Bytes())
	assert.Equal(t, "twse-market-trades", entry["kind"])
	assert.Equal(t, "2024-01-02", entry["date"])

	assert.NotNil(t, WithComponent(nil, "fallback"))
}

func TestTextFormat(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	var console bytes.Buffer
	logger, err := InitializeLoggerWithConsole(config.LoggingConfig{Level: "info", Format: "text", Output: "console"}, &console)
	require.NoError(t, err)

	logger.InfoContext(WithTraceID(context.Background(), "abc"), "decomposed", slog.String("kind", "put-call-ratio"))

	line := console.String()
	assert.Contains(t, line, "msg=decomposed")
	assert.Contains(t, line, "kind=put-call-ratio")
	assert.Contains(t, line, "trace_id=abc")
}
