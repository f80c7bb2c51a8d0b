package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"twxcli/internal/config"
)

// logSink is the process-wide logger. The server and the CLI each set it up
// once at startup; later calls get the first logger back.
var logSink struct {
	once   sync.Once
	mu     sync.Mutex
	logger *slog.Logger
	file   *os.File
}

type contextKey string

// TraceIDContextKey carries the per-request or per-invocation trace id.
const TraceIDContextKey contextKey = "trace_id"

// InitializeLogger builds the global logger with console output on stdout
// and makes it the slog default.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	return InitializeLoggerWithConsole(cfg, os.Stdout)
}

// InitializeLoggerWithConsole is InitializeLogger writing console output to w.
// The CLI passes os.Stderr so that stdout carries only report data.
func InitializeLoggerWithConsole(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	var err error
	logSink.once.Do(func() {
		var out io.Writer
		if out, err = logOutput(cfg, w); err != nil {
			return
		}
		logSink.logger = slog.New(&traceHandler{Handler: newHandler(cfg.Format, out, parseLogLevel(cfg.Level))})
		slog.SetDefault(logSink.logger)
	})
	return logSink.logger, err
}

// GetLogger returns the global logger, or slog.Default before initialization.
func GetLogger() *slog.Logger {
	if logSink.logger == nil {
		return slog.Default()
	}
	return logSink.logger
}

func newHandler(format string, out io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{AddSource: true, Level: level}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(out, opts)
	}
	return slog.NewJSONHandler(out, opts)
}

// logOutput resolves the "console", "file" and "both" outputs. The file is
// kept open until CloseLogFile.
func logOutput(cfg config.LoggingConfig, console io.Writer) (io.Writer, error) {
	output := strings.ToLower(cfg.Output)
	if output != "file" && output != "both" {
		return console, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logSink.mu.Lock()
	logSink.file = file
	logSink.mu.Unlock()

	if output == "both" {
		return io.MultiWriter(console, file), nil
	}
	return file, nil
}

// traceHandler stamps trace_id from the context onto every record.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// parseLogLevel maps a config level to slog; unknown names mean info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(TraceIDContextKey).(string)
	return traceID
}

// CloseLogFile closes the log file, if any. Safe to call more than once.
func CloseLogFile() error {
	logSink.mu.Lock()
	defer logSink.mu.Unlock()

	if logSink.file == nil {
		return nil
	}
	err := logSink.file.Close()
	logSink.file = nil
	return err
}

// ResetLoggerForTesting drops the global logger so a test can initialize
// its own.
func ResetLoggerForTesting() {
	CloseLogFile()
	logSink.logger = nil
	logSink.once = sync.Once{}
}
