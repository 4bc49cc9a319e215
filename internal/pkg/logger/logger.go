// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextKey represents keys for context values
type ContextKey string

const (
	ContextKeyRequestID     ContextKey = "request_id"
	ContextKeyTraceID       ContextKey = "trace_id"
	ContextKeyClientIP      ContextKey = "client_ip"
	ContextKeyMethod        ContextKey = "method"
	ContextKeyPath          ContextKey = "path"
	ContextKeyWarehouseID   ContextKey = "warehouse_id"
	ContextKeyReservationID ContextKey = "reservation_id"
	ContextKeyTaskID        ContextKey = "task_id"

	contextKeyLogger ContextKey = "logger"
)

// OutputConfig describes an additional log destination
type OutputConfig struct {
	Type     string `json:"type"` // file
	Level    string `json:"level"`
	Filename string `json:"filename"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level          string         `json:"level"`
	Format         string         `json:"format"`
	Output         string         `json:"output"`
	AddSource      bool           `json:"add_source"`
	Environment    string         `json:"environment"`
	ServiceName    string         `json:"service_name"`
	ServiceVersion string         `json:"service_version"`
	Outputs        []OutputConfig `json:"outputs"`
}

// Logger wraps slog.Logger with context extraction
type Logger struct {
	*slog.Logger
	config *LogConfig
}

var defaultLogger *Logger

// SetupLogger builds the process logger and installs it as the slog default
func SetupLogger(level string, format string) *Logger {
	l := NewLogger(&LogConfig{
		Level:          level,
		Format:         format,
		Output:         "stdout",
		AddSource:      level == "debug",
		ServiceName:    os.Getenv("SERVICE_NAME"),
		ServiceVersion: os.Getenv("SERVICE_VERSION"),
		Environment:    os.Getenv("APP_ENV"),
	})
	defaultLogger = l
	slog.SetDefault(l.Logger)
	return l
}

// NewLogger creates a logger writing to config.Output
func NewLogger(config *LogConfig) *Logger {
	if config == nil {
		config = &LogConfig{Level: "info", Format: "json", Output: "stdout"}
	}
	return newLogger(config, getWriter(config.Output))
}

func newLogger(config *LogConfig, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(config.Level),
		AddSource: config.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			return replaceAttr(config, groups, a)
		},
	}

	var primary slog.Handler
	if config.Format == "text" {
		primary = NewPrettyTextHandler(w, opts)
	} else {
		primary = slog.NewJSONHandler(w, opts)
	}

	handlers := []slog.Handler{primary}
	for _, output := range config.Outputs {
		if h := createOutputHandler(output); h != nil {
			handlers = append(handlers, h)
		}
	}

	var handler slog.Handler = primary
	if len(handlers) > 1 {
		handler = NewMultiHandler(handlers...)
	}
	handler = NewSanitizationHandler(NewContextHandler(handler))

	attrs := []slog.Attr{}
	if config.ServiceName != "" {
		attrs = append(attrs, slog.String("service", config.ServiceName))
	}
	if config.ServiceVersion != "" {
		attrs = append(attrs, slog.String("version", config.ServiceVersion))
	}
	if config.Environment != "" {
		attrs = append(attrs, slog.String("env", config.Environment))
	}
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}

	return &Logger{Logger: slog.New(handler), config: config}
}

// WithContext returns a logger carrying the context's identifiers as attributes
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	attrs := extractContextAttrs(ctx)
	if len(attrs) == 0 {
		return l.Logger
	}
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, a)
	}
	return l.Logger.With(args...)
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getWriter(output string) io.Writer {
	switch {
	case output == "stderr":
		return os.Stderr
	case strings.HasPrefix(output, "file:"):
		file, err := os.OpenFile(strings.TrimPrefix(output, "file:"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return os.Stdout
		}
		return file
	default:
		return os.Stdout
	}
}

var contextKeys = []ContextKey{
	ContextKeyRequestID,
	ContextKeyTraceID,
	ContextKeyClientIP,
	ContextKeyMethod,
	ContextKeyPath,
	ContextKeyWarehouseID,
	ContextKeyReservationID,
	ContextKeyTaskID,
}

func extractContextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	for _, key := range contextKeys {
		val := ctx.Value(key)
		if val == nil {
			continue
		}
		k := string(key)
		switch v := val.(type) {
		case string:
			if v != "" {
				attrs = append(attrs, slog.String(k, v))
			}
		case uuid.UUID:
			attrs = append(attrs, slog.String(k, v.String()))
		case time.Duration:
			attrs = append(attrs, slog.Duration(k, v))
		default:
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	return attrs
}

func replaceAttr(config *LogConfig, _ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
		}
	}

	// Log aggregators expect "severity".
	if a.Key == slog.LevelKey && config.Format != "text" {
		a.Key = "severity"
	}

	if strings.HasSuffix(a.Key, "_ms") {
		if d, ok := a.Value.Any().(time.Duration); ok {
			a.Value = slog.Float64Value(float64(d.Microseconds()) / 1000)
		}
	}

	return a
}

func createOutputHandler(output OutputConfig) slog.Handler {
	if output.Type != "file" || output.Filename == "" {
		return nil
	}
	file, err := os.OpenFile(output.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil
	}
	return slog.NewJSONHandler(file, &slog.HandlerOptions{Level: ParseLevel(output.Level)})
}

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	if defaultLogger == nil {
		defaultLogger = NewLogger(nil)
	}
	return defaultLogger
}

// FromContext extracts logger from context or returns default
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKeyLogger).(*Logger); ok {
		return l.WithContext(ctx)
	}
	return GetDefault().WithContext(ctx)
}

// WithLogger adds logger to context
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, l)
}

// WithValue stores a log-correlated value in ctx
func WithValue(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

// RequestID returns the request id stored in ctx, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}
