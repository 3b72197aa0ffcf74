package text

import (
	"io"
	"log/slog"
	"os"
)

// NewDefault writes one key=value line per record to stdout.
func NewDefault(level slog.Level) *slog.Logger {
	return New(os.Stdout, level)
}

func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
