package internal

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/loom/pkg/cache"
	"github.com/dmitrymomot/loom/pkg/coding"
	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/header"
	"github.com/dmitrymomot/loom/pkg/health"
	"github.com/dmitrymomot/loom/pkg/i18n"
	"github.com/dmitrymomot/loom/pkg/logger"
	"github.com/dmitrymomot/loom/pkg/session"
)

// Server limits.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App is a component application: it owns the page classes, the URL coding
// strategy, sessions and the stores a request cycle works with.
// App is immutable after creation - all configuration is done via New().
type App struct {
	router   chi.Router
	logger   *slog.Logger
	settings Settings

	coding    *coding.Strategy
	pages     *PageRegistry
	resources *ResourceRegistry
	listeners *ListenerRegistry

	loader        component.MarkupLoader
	i18n          *i18n.I18n
	i18nNamespace string
	authorizer    component.Authorizer
	bundles       *header.Bundles

	sessions *SessionManager
	states   *cache.Memory[*pageState]
	buffers  BufferStore

	mapper         ExceptionMapper
	cycleListeners []RequestCycleListener
	external       http.Handler

	homePage          string
	accessDeniedPage  string
	pageExpiredPage   string
	internalErrorPage string

	healthConfig  *healthConfig
	middlewares   []func(http.Handler) http.Handler
	staticRoutes  []staticRoute
	startupHooks  []func(context.Context) error
	shutdownHooks []func(context.Context) error
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
//
// Example:
//
//	app := loom.New(
//	    loom.WithHomePage("Home"),
//	    loom.WithPage("Home", pages.NewHome),
//	    loom.WithMount("/articles/${id}", "Article"),
//	    loom.WithPage("Article", pages.NewArticle),
//	    loom.WithMarkup(templates),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:    chi.NewRouter(),
		logger:    logger.NewNope(), // Default: noop logger (before options)
		settings:  DefaultSettings(),
		coding:    coding.NewStrategy(),
		pages:     NewPageRegistry(),
		resources: NewResourceRegistry(),
		listeners: NewListenerRegistry(),
		bundles:   header.NewBundles(),
		mapper:    DefaultExceptionMapper{},
	}

	for _, opt := range opts {
		opt(a)
	}
	a.settings = a.settings.withDefaults()

	if a.sessions == nil {
		store := session.NewMemoryStore()
		a.sessions = NewSessionManager(store)
		a.shutdownHooks = append(a.shutdownHooks, func(context.Context) error { return store.Close() })
	}
	a.sessions.SetLogger(a.logger)

	a.states = cache.NewMemory[*pageState](cache.WithDefaultTTL(a.settings.PageStateTTL))
	a.shutdownHooks = append(a.shutdownHooks, func(context.Context) error { return a.states.Close() })

	if a.buffers == nil {
		mem := NewMemoryBufferStore(a.settings.BufferTTL)
		a.buffers = mem
		a.shutdownHooks = append(a.shutdownHooks, func(context.Context) error { return mem.Close() })
	}

	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router for the App.
// This is used internally for composing multi-domain routing.
func (a *App) Router() chi.Router {
	return a.router
}

// Settings returns the effective settings.
func (a *App) Settings() Settings { return a.settings }

// Coding returns the URL coding strategy.
func (a *App) Coding() *coding.Strategy { return a.coding }

// Pages returns the page registry.
func (a *App) Pages() *PageRegistry { return a.pages }

// Resources returns the shared resource registry.
func (a *App) Resources() *ResourceRegistry { return a.resources }

// Listeners returns the listener interface registry.
func (a *App) Listeners() *ListenerRegistry { return a.listeners }

// Sessions returns the session manager.
func (a *App) Sessions() *SessionManager { return a.sessions }

// Hooks returns the startup and shutdown hooks the App registered, such as
// the session janitor. Run and App.Run execute them.
func (a *App) Hooks() (startup, shutdown []func(context.Context) error) {
	return a.startupHooks, a.shutdownHooks
}

// Run starts a single-domain HTTP server and blocks until shutdown.
// This is a convenience method for the common single-app case.
//
// Example:
//
//	app := loom.New(loom.WithHomePage("Home"), loom.WithPage("Home", newHome))
//	err := app.Run(":8080", loom.Logger(slog))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := newRunConfig(append(slices.Clip(opts), Address(addr))...)
	cfg.startup = slices.Concat(a.startupHooks, cfg.startup)
	cfg.shutdown = slices.Concat(cfg.shutdown, a.shutdownHooks)
	return cfg.serve(a.router)
}

// setupRoutes configures the router: middleware, static files, health
// endpoints and the request cycle for everything else.
func (a *App) setupRoutes() {
	for _, mw := range a.middlewares {
		a.router.Use(mw)
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks, health.WithLogger(a.logger)))
	}

	a.router.HandleFunc("/*", a.serveCycle)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	loom.WithReadinessCheck("redis", redis.Healthcheck(client))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
