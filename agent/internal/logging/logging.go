package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/lblanc/grafana-integration/agent/internal/config"
)

// ParseLevel converts a config level name into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
}

// New builds the agent logger. When cfg.Enabled is set logs are written as
// JSON to cfg.File; the returned closer closes that file. Otherwise logs go
// to stderr, colourised by tint when cfg.Format is text and stderr is a
// terminal.
func New(cfg config.LoggingConfig, level slog.Level) (*slog.Logger, io.Closer, error) {
	if cfg.Enabled {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: open %q: %w", cfg.File, err)
		}
		return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})), f, nil
	}
	return slog.New(newHandler(os.Stderr, cfg.Format, level, isTerminal(os.Stderr))), nopCloser{}, nil
}

func newHandler(w io.Writer, format string, level slog.Level, terminal bool) slog.Handler {
	if format != "text" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	if !terminal {
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:   level,
		NoColor: runtime.GOOS == "windows",
	})
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
