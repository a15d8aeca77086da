package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `yaml:"dsn" env:"SENTRY_DSN"`
	Environment string `yaml:"environment" env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel determines which log levels to send to Sentry (e.g., slog.LevelWarn for warnings+errors)
	MinLevel slog.Level `yaml:"min_level"`
}

// NewWithSentry creates a logger that sends logs to both stdout and Sentry.
// If DSN is empty, only stdout logging is enabled.
// Context extractors are applied to logs sent to both destinations.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	stdoutHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	if cfg.DSN == "" {
		return slog.New(NewContextHandler(stdoutHandler, extractors...))
	}
	return newSentryLogger(stdoutHandler, cfg, extractors...)
}

func newSentryLogger(base slog.Handler, cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		// Keep logging to the stream handler when Sentry cannot start.
		slog.New(base).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewContextHandler(base, extractors...))
	}

	// Errors become issues; warnings are kept as searchable logs.
	eventLevel := []slog.Level{slog.LevelError}
	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: eventLevel,
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	return slog.New(NewContextHandler(newMultiHandler(base, sentryHandler), extractors...))
}
