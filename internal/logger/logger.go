package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the process logger: JSON at info level for production and
// staging, text at debug level otherwise. service and env are attached to
// every record.
func New(env, service string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	var handler slog.Handler
	switch strings.ToLower(env) {
	case "production", "prod", "staging", "stage":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	return slog.New(handler).With(
		slog.String("service", service),
		slog.String("env", env),
	)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}
