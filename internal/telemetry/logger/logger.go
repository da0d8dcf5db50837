// Package logger provides structured logging for issuemesh.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats accepted by Config.Format.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config describes the process logger.
type Config struct {
	// Level is debug, info, warn or error. Empty means info.
	Level string

	// Format is json or text ("console" is accepted as text). Empty means json.
	Format string

	// Output defaults to stderr.
	Output io.Writer

	AddSource bool

	// Service is attached to every record as "service" when set.
	Service string
}

// level is shared by every logger built by New so SetLevel applies to the
// whole process, including loggers derived with With.
var level = new(slog.LevelVar)

// New builds a logger writing cfg.Format records to cfg.Output. The
// returned logger redacts credentials and picks up request and observer
// IDs from the context passed to the *Context logging methods.
func New(cfg Config) (*slog.Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactAttr(a)
		},
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", FormatJSON:
		h = slog.NewJSONHandler(out, opts)
	case FormatText, "console":
		h = slog.NewTextHandler(out, opts)
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}

	level.Set(lvl)
	l := slog.New(&contextHandler{next: h})
	if cfg.Service != "" {
		l = l.With("service", cfg.Service)
	}
	return l, nil
}

// SetLevel changes the level of every logger built by New.
func SetLevel(s string) error {
	lvl, err := ParseLevel(s)
	if err != nil {
		return err
	}
	level.Set(lvl)
	return nil
}

// GetLevel returns the current level in lower case.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

// ParseLevel maps a configured level name to a slog.Level.
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
	return slog.LevelInfo, fmt.Errorf("logger: unknown level %q", s)
}
