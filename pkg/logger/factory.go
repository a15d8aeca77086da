package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler format and level. Zero value is JSON at info.
type Config struct {
	Level  string       `yaml:"level" env:"LOG_LEVEL" envDefault:"info"`
	Format string       `yaml:"format" env:"LOG_FORMAT" envDefault:"json"`
	Sentry SentryConfig `yaml:"sentry"`
}

// New creates a JSON-formatted logger with optional context extractors.
func New(extractors ...ContextExtractor) *slog.Logger {
	log := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(NewContextHandler(log, extractors...))
}

// NewFromConfig builds a logger writing to w. A non-empty Sentry DSN adds
// the Sentry handler next to the stream one.
func NewFromConfig(cfg Config, w io.Writer, extractors ...ContextExtractor) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		h = slog.NewJSONHandler(w, opts)
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}

	if cfg.Sentry.DSN != "" {
		return newSentryLogger(h, cfg.Sentry, extractors...), nil
	}
	return slog.New(NewContextHandler(h, extractors...)), nil
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}
