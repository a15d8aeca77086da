package internal

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/dmitrymomot/loom/pkg/hostrouter"
)

// Run starts a multi-domain HTTP server and blocks until shutdown.
// Use this for composing multiple Apps under different domain patterns.
// Startup and shutdown hooks of every App (session janitors, stores) run
// once, even when an App serves several patterns.
//
// Example:
//
//	admin := loom.New(loom.WithHomePage("Dashboard"), ...)
//	shop := loom.New(loom.WithHomePage("Catalog"), ...)
//
//	err := loom.Run(
//	    loom.Domain("admin.acme.com", admin),
//	    loom.Domain("*.acme.com", shop),
//	    loom.Address(":8080"),
//	    loom.Logger(slog),
//	)
func Run(opts ...RunOption) error {
	cfg := newRunConfig(opts...)

	var apps []*App
	var handler http.Handler
	switch {
	case len(cfg.domains) > 0:
		routes := make(hostrouter.Routes, len(cfg.domains))
		for pattern, app := range cfg.domains {
			routes[pattern] = app.Router()
			apps = append(apps, app)
		}
		var fallback http.Handler = http.NotFoundHandler()
		if cfg.fallback != nil {
			fallback = cfg.fallback.Router()
			apps = append(apps, cfg.fallback)
		}
		handler = hostrouter.New(routes, fallback)
	case cfg.fallback != nil:
		handler = cfg.fallback.Router()
		apps = append(apps, cfg.fallback)
	default:
		return errors.New("loom.Run: no domains or fallback configured")
	}

	var startup, shutdown []func(context.Context) error
	seen := make(map[*App]struct{}, len(apps))
	for _, app := range apps {
		if _, dup := seen[app]; dup {
			continue
		}
		seen[app] = struct{}{}
		up, down := app.Hooks()
		startup = append(startup, up...)
		shutdown = append(shutdown, down...)
	}
	cfg.startup = slices.Concat(startup, cfg.startup)
	cfg.shutdown = slices.Concat(cfg.shutdown, shutdown)

	return cfg.serve(handler)
}
