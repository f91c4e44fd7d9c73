// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package logger builds the JSON [slog.Logger] shared by both binaries.
//
// The server logs to stdout; the CLI logs to stderr so command output on
// stdout stays machine-readable.
package logger

import (
	"io"
	"log/slog"
)

// New returns a JSON logger tagged with the application name.
func New(w io.Writer, app string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler).With(slog.String("app", app))
}

// Discard returns a logger that drops every record. Used by tests and by
// CLI commands run without --debug that still need a non-nil logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
