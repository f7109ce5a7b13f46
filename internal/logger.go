package internal

import (
	"io"
	"log/slog"
	"time"
)

// NewLogger builds the process logger. Dev gets human-readable text; prod
// gets JSON with RFC3339Nano timestamps for log aggregation. Every record
// carries the env so mixed streams stay attributable.
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}

	var h slog.Handler
	if env == "prod" {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339Nano))
			}
			return a
		}
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return slog.New(h).With("env", env)
}

// parseLogLevel maps the LOG_LEVEL config values to slog levels.
// NewConfig already warns on and replaces unknown values, so anything
// unrecognized here quietly becomes info.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
