package main

import (
	"io"
	"log/slog"

	"github.com/sakif/task-manager/internal/config"
)

// newLogger builds the process logger: text for a terminal, json for
// anything that ships logs somewhere else.
func newLogger(w io.Writer, cfg config.ServerConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
