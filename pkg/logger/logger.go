// Package logger builds slog loggers for the CLI and server: a colored
// text handler for terminals, JSON for log shippers and the charm handler.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/soundprediction/kgraph/pkg/config"
)

// Log output formats accepted by New.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatCharm = "charm"
)

// NewDefaultLogger returns a colored text logger on stderr.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps debug, info, warn/warning and error to slog levels.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New builds a logger from configuration, writing to w (stderr when nil).
// Unknown formats fall back to colored text.
func New(cfg config.LogConfig, w io.Writer) *slog.Logger {
	return slog.New(NewHandler(cfg, w))
}

// NewHandler returns the handler New would use, for wrapping by other
// handlers.
func NewHandler(cfg config.LogConfig, w io.Writer) slog.Handler {
	if w == nil {
		w = os.Stderr
	}
	level := ParseLevel(cfg.Level)
	switch strings.ToLower(cfg.Format) {
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case FormatCharm:
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
		})
	}
	h := NewColorHandler(w, &slog.HandlerOptions{Level: level})
	if f, ok := w.(*os.File); !ok || !isTerminal(f) {
		return h.WithoutColor()
	}
	return h
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
