// Package logger holds the process-wide structured logger.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// L is the global logger. It writes through slog's default handler until
// InitLogger is called.
var L = slog.Default()

// InitLogger installs a JSON logger on stdout at the given level.
// Call this once at startup, after loading config.
func InitLogger(levelStr string) {
	level, ok := ParseLevel(levelStr)
	if !ok {
		slog.Warn("invalid log level, defaulting to info", "configured_level", levelStr)
	}
	L = New(os.Stdout, level)
	slog.SetDefault(L)
	L.Info("logger initialized", "level", level.String())
}

// New builds a JSON logger writing to w. Timestamps are RFC 3339.
func New(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps debug/info/warn/error to a slog level. Unknown names
// yield info and false.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// FromContext returns L tagged with the request ID chi stored in ctx, if any.
func FromContext(ctx context.Context) *slog.Logger {
	if id := middleware.GetReqID(ctx); id != "" {
		return L.With("request_id", id)
	}
	return L
}
