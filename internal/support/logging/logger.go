// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options customize the slog logger construction.
type Options struct {
	Level     slog.Level
	Format    string // "json" (default) or "text"/"console"
	AddSource bool
	// Environment and Version are attached to every record when set.
	Environment string
	Version     string
	// Output defaults to stdout.
	Output io.Writer
}

// New returns a logger tagged with service=mazpan.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level, AddSource: opts.AddSource}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "text", "console":
		handler = slog.NewTextHandler(out, handlerOpts)
	default:
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	attrs := []slog.Attr{slog.String("service", "mazpan")}
	if opts.Environment != "" {
		attrs = append(attrs, slog.String("env", opts.Environment))
	}
	if opts.Version != "" {
		attrs = append(attrs, slog.String("version", opts.Version))
	}
	return slog.New(handler.WithAttrs(attrs))
}

// Discard returns a logger that drops everything, for commands that own the terminal.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
