package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/loom"
	"github.com/dmitrymomot/loom/cmd/loom/guestbook"
	"github.com/dmitrymomot/loom/middlewares"
	"github.com/dmitrymomot/loom/pkg/i18n"
)

// buildApp wires the guestbook onto the configured backends.
func buildApp(cfg Config, log *slog.Logger, b *backends, book *guestbook.Book, msgs *i18n.I18n) *loom.App {
	mws := []func(http.Handler) http.Handler{
		middlewares.RequestID(),
		middlewares.Recover(middlewares.WithRecoverLogger(log)),
		middlewares.Timeout(timeoutOf(cfg)),
		middlewares.CSRF(
			middlewares.WithTrustedOrigins(cfg.CSRF.TrustedOrigins...),
			middlewares.WithCSRFLogger(log),
		),
		middlewares.Locale(msgs),
	}
	if len(cfg.CORSOrigins) > 0 {
		mws = append(mws, middlewares.CORS(middlewares.WithAllowOrigins(cfg.CORSOrigins...)))
	}

	sessionOpts := []loom.SessionOption{}
	if cfg.Session.Secret != "" {
		sessionOpts = append(sessionOpts, loom.WithSessionSecret(cfg.Session.Secret))
	}
	if cfg.Session.MaxAge > 0 {
		sessionOpts = append(sessionOpts, loom.WithSessionMaxAge(cfg.Session.MaxAge))
	}

	opts := []loom.Option{
		loom.WithSettings(cfg.Engine),
		loom.WithCustomLogger(log),
		loom.WithRequestLogger(log, slog.LevelInfo),
		loom.WithMiddleware(mws...),
		loom.WithSession(b.sessions, sessionOpts...),
	}
	if cfg.Session.Janitor != "" && cfg.Session.Driver != DriverMemory {
		opts = append(opts, loom.WithSessionJanitor(cfg.Session.Janitor))
	}
	if b.redis != nil {
		opts = append(opts, loom.WithRedisBuffers(b.redis))
	}
	if cfg.Health {
		var checks []loom.HealthOption
		for name, fn := range b.checks {
			checks = append(checks, loom.WithReadinessCheck(name, fn))
		}
		opts = append(opts, loom.WithHealthChecks(checks...))
	}
	opts = append(opts, guestbook.Options(book, msgs)...)

	return loom.New(opts...)
}

func timeoutOf(cfg Config) time.Duration {
	if cfg.RequestTimeout > 0 {
		return cfg.RequestTimeout
	}
	return middlewares.DefaultTimeout
}
