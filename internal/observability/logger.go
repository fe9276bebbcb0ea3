// Package observability builds the structured logger and Prometheus metrics
// shared by the commands.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/census-migration-etl/internal/config"
)

// NewLogger returns the run's logger and sets it as the slog default. With
// the preview disabled stdout carries nothing else, so the shared stdout
// logger is used; otherwise logs go to stderr and stdout is left to the
// preview.
func NewLogger(cfg *config.Config) *slog.Logger {
	if cfg.PreviewRows == 0 {
		return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	}
	logger := newLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)
	return logger
}

// newLogger mirrors the shared logger's handler choice on an arbitrary
// writer. Unknown levels fall back to info.
func newLogger(w io.Writer, format, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
