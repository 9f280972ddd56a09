package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger for one binary (api, migrate). dev gets
// readable text at debug level; every other env gets JSON at info for the log
// pipeline. Each line carries service and env.
func NewLogger(service, env string) *slog.Logger {
	return newLogger(os.Stdout, service, env)
}

func newLogger(w io.Writer, service, env string) *slog.Logger {
	var handler slog.Handler

	if env == "dev" {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	return slog.New(NewTraceHandler(handler)).With("service", service, "env", env)
}
