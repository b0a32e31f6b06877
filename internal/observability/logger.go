package observability

import (
	"io"
	"log/slog"
	"os"
)

const serviceName = "newsy"

// NewLogger writes JSON to stdout. Every record carries the service and env so
// lines from several deployments can share one sink.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "dev" {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	return slog.New(NewTraceHandler(slog.NewJSONHandler(w, opts))).With(
		slog.String("service", serviceName),
		slog.String("env", env),
	)
}
