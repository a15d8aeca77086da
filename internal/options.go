package internal

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/header"
	"github.com/dmitrymomot/loom/pkg/health"
	"github.com/dmitrymomot/loom/pkg/i18n"
	"github.com/dmitrymomot/loom/pkg/logger"
	"github.com/dmitrymomot/loom/pkg/markup"
	"github.com/dmitrymomot/loom/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithSettings replaces the settings. Options applied later, such as
// WithRenderStrategy, override single fields.
func WithSettings(s Settings) Option {
	return func(a *App) {
		a.settings = s
	}
}

// WithRenderStrategy sets how pages reach the client after a listener call.
func WithRenderStrategy(s RenderStrategy) Option {
	return func(a *App) {
		a.settings.RenderStrategy = s
	}
}

// WithExceptionDisplay sets how unexpected errors are shown.
func WithExceptionDisplay(d ExceptionDisplay) Option {
	return func(a *App) {
		a.settings.ExceptionDisplay = d
	}
}

// WithMultiWindowSupport gives a page opened again in another browser window
// its own page map.
func WithMultiWindowSupport(enabled bool) Option {
	return func(a *App) {
		a.settings.AutomaticMultiWindowSupport = enabled
	}
}

// WithStripWicketTags removes wicket: tags and attributes from the output.
func WithStripWicketTags(strip bool) Option {
	return func(a *App) {
		a.settings.StripWicketTags = strip
	}
}

// WithPage registers a page class. Registering a class twice panics.
func WithPage(class string, factory PageFactory) Option {
	return func(a *App) {
		if err := a.pages.Register(class, factory); err != nil {
			panic(fmt.Sprintf("register page: %v", err))
		}
	}
}

// WithMount serves class at a path template instead of the query string
// form. "${name}" is a required placeholder, "#{name}" an optional one.
//
// Example:
//
//	loom.WithMount("/articles/${id}/#{slug}", "Article")
func WithMount(path, class string) Option {
	return func(a *App) {
		if err := a.coding.Mount(path, class); err != nil {
			panic(fmt.Sprintf("mount %s: %v", path, err))
		}
	}
}

// WithHomePage sets the page served at the application root.
func WithHomePage(class string) Option {
	return func(a *App) {
		a.homePage = class
	}
}

// WithAccessDeniedPage sets the page shown when a page or listener is not
// authorized.
func WithAccessDeniedPage(class string) Option {
	return func(a *App) {
		a.accessDeniedPage = class
	}
}

// WithPageExpiredPage sets the page shown when a stored page is gone.
func WithPageExpiredPage(class string) Option {
	return func(a *App) {
		a.pageExpiredPage = class
	}
}

// WithInternalErrorPage sets the page shown by ShowInternalErrorPage.
func WithInternalErrorPage(class string) Option {
	return func(a *App) {
		a.internalErrorPage = class
	}
}

// WithMarkup loads page and panel markup from fsys. The markup cache TTL
// comes from the settings in effect when the option is applied.
//
// Example:
//
//	//go:embed markup
//	var templates embed.FS
//
//	loom.WithMarkup(templates, "markup")
func WithMarkup(fsys fs.FS, subDir string, opts ...markup.LoaderOption) Option {
	return func(a *App) {
		sub, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}
		if ttl := a.settings.MarkupCacheTTL; ttl > 0 {
			opts = append([]markup.LoaderOption{markup.WithCacheTTL(ttl)}, opts...)
		}
		a.loader = markup.NewLoader(sub, opts...)
	}
}

// WithMarkupLoader sets a custom markup loader.
func WithMarkupLoader(l component.MarkupLoader) Option {
	return func(a *App) {
		a.loader = l
	}
}

// WithI18n resolves <wicket:message> keys through svc within namespace.
func WithI18n(svc *i18n.I18n, namespace string) Option {
	return func(a *App) {
		a.i18n = svc
		a.i18nNamespace = namespace
	}
}

// WithAuthorizer checks page instantiation and component actions.
func WithAuthorizer(auth component.Authorizer) Option {
	return func(a *App) {
		a.authorizer = auth
	}
}

// WithBundles registers header bundles. A page referencing a bundle member
// gets the bundle instead.
func WithBundles(bundles ...*header.Bundle) Option {
	return func(a *App) {
		for _, b := range bundles {
			if err := a.bundles.Register(b); err != nil {
				panic(fmt.Sprintf("register bundle: %v", err))
			}
		}
	}
}

// WithResource serves h at /resources/key.
func WithResource(key string, h http.Handler) Option {
	return func(a *App) {
		a.resources.Register(key, h)
	}
}

// WithListener registers a custom listener interface.
func WithListener(l Listener) Option {
	return func(a *App) {
		if err := a.listeners.Register(l); err != nil {
			panic(fmt.Sprintf("register listener: %v", err))
		}
	}
}

// WithSession stores sessions in store. Without it sessions live in memory.
//
// Example:
//
//	loom.New(
//	    loom.WithSession(session.NewPostgresStore(pool),
//	        loom.WithSessionCookieName("__sid"),
//	        loom.WithSessionSecret(os.Getenv("SESSION_SECRET")),
//	    ),
//	)
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessions = NewSessionManager(store, opts...)
	}
}

// WithSessionJanitor deletes expired sessions on a cron schedule while the
// App runs.
//
// Example:
//
//	loom.WithSessionJanitor("*/10 * * * *")
func WithSessionJanitor(schedule string) Option {
	return func(a *App) {
		var j *session.Janitor
		a.startupHooks = append(a.startupHooks, func(ctx context.Context) error {
			var err error
			if j, err = session.NewJanitor(a.sessions.Store(), schedule, a.logger); err != nil {
				return err
			}
			return j.Start(ctx)
		})
		a.shutdownHooks = append(a.shutdownHooks, func(ctx context.Context) error {
			if j == nil {
				return nil
			}
			return j.Shutdown(ctx)
		})
	}
}

// WithBufferStore sets where redirect buffers are kept.
func WithBufferStore(s BufferStore) Option {
	return func(a *App) {
		a.buffers = s
	}
}

// WithRedisBuffers keeps redirect buffers in Redis, for deployments where
// the request following a redirect may reach another instance.
func WithRedisBuffers(client redis.UniversalClient) Option {
	return func(a *App) {
		a.buffers = NewRedisBufferStore(client, a.settings.BufferTTL)
	}
}

// WithExceptionMapper replaces the DefaultExceptionMapper.
func WithExceptionMapper(m ExceptionMapper) Option {
	return func(a *App) {
		if m != nil {
			a.mapper = m
		}
	}
}

// WithCycleListener adds request cycle listeners.
func WithCycleListener(l ...RequestCycleListener) Option {
	return func(a *App) {
		a.cycleListeners = append(a.cycleListeners, l...)
	}
}

// WithExternalHandler serves requests no page or resource answers.
func WithExternalHandler(h http.Handler) Option {
	return func(a *App) {
		a.external = h
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled. Files are served with default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	loom.New(
//	    loom.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}

		fileServer := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Block directory listings
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler, pattern})
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	loom.WithHealthChecks(
//	    loom.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    loom.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id).
//
// Example:
//
//	loom.New(
//	    loom.WithLogger("web", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithShutdownHook runs fn when the App shuts down, after the server stops.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(a *App) {
		if fn != nil {
			a.shutdownHooks = append(a.shutdownHooks, fn)
		}
	}
}
