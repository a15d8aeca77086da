package internal

import (
	"context"
	"log/slog"
	"time"
)

// RunOption configures Run and App.Run.
type RunOption func(*runConfig)

type runConfig struct {
	address         string
	logger          *slog.Logger
	shutdownTimeout time.Duration
	startup         []func(context.Context) error
	shutdown        []func(context.Context) error
	domains         map[string]*App
	fallback        *App
	ctx             context.Context
}

func newRunConfig(opts ...RunOption) *runConfig {
	c := &runConfig{
		address:         ":8080",
		shutdownTimeout: defaultShutdownTimeout,
		domains:         make(map[string]*App),
		ctx:             context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Address sets the listen address. Defaults to ":8080".
func Address(addr string) RunOption {
	return func(c *runConfig) {
		if addr != "" {
			c.address = addr
		}
	}
}

// Logger sets the server logger. Without one the server is silent.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds draining connections plus running shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook runs fn after the listener is open and before the first
// request. An error aborts the start.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startup = append(c.startup, fn)
		}
	}
}

// ShutdownHook runs fn once the server stopped accepting requests, in
// registration order.
//
//	loom.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdown = append(c.shutdown, fn)
		}
	}
}

// Domain serves app for a host pattern: "admin.acme.com" matches exactly,
// "*.acme.com" matches any single subdomain.
func Domain(pattern string, app *App) RunOption {
	return func(c *runConfig) {
		if pattern != "" && app != nil {
			c.domains[pattern] = app
		}
	}
}

// Fallback serves hosts no Domain matches. Alone it serves every host.
func Fallback(app *App) RunOption {
	return func(c *runConfig) {
		if app != nil {
			c.fallback = app
		}
	}
}

// WithContext sets the parent context; cancelling it shuts the server down
// like SIGTERM does.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}
