package loom

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/loom/internal"
	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/cookie"
	"github.com/dmitrymomot/loom/pkg/header"
	"github.com/dmitrymomot/loom/pkg/health"
	"github.com/dmitrymomot/loom/pkg/i18n"
	"github.com/dmitrymomot/loom/pkg/logger"
	"github.com/dmitrymomot/loom/pkg/markup"
	"github.com/dmitrymomot/loom/pkg/session"
	"github.com/dmitrymomot/loom/pkg/urls"
)

// Type aliases - public API
type (
	// App is a component application.
	App = internal.App

	// RequestCycle carries one request through the engine. Listener code
	// receives it as a component.Cycle.
	RequestCycle = internal.RequestCycle

	// PageFactory builds a page from its parameters.
	PageFactory = internal.PageFactory

	// Settings tune the request cycle.
	Settings = internal.Settings

	// RenderStrategy decides how pages reach the client after a listener call.
	RenderStrategy = internal.RenderStrategy

	// ExceptionDisplay decides how unexpected errors are shown.
	ExceptionDisplay = internal.ExceptionDisplay

	// RequestTarget produces the response of a request.
	RequestTarget = internal.RequestTarget

	// Listener is a named listener interface.
	Listener = internal.Listener

	// ExceptionMapper picks the target answering a failed request.
	ExceptionMapper = internal.ExceptionMapper

	// ExceptionMapperFunc adapts a function to ExceptionMapper.
	ExceptionMapperFunc = internal.ExceptionMapperFunc

	// RequestCycleListener observes request cycles.
	RequestCycleListener = internal.RequestCycleListener

	// BufferStore keeps pages rendered ahead of a redirect.
	BufferStore = internal.BufferStore

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// Session represents a user session.
	Session = session.Session

	// SessionStore defines the interface for session persistence.
	SessionStore = session.Store

	// PageParameters are the named and indexed parameters of a page URL.
	PageParameters = urls.PageParameters

	// HTTPError answers the request with a status code.
	HTTPError = internal.HTTPError

	// AuthorizationError reports a page or component the user may not use.
	AuthorizationError = internal.AuthorizationError

	// ListenerInvocationError wraps an error returned by a listener.
	ListenerInvocationError = internal.ListenerInvocationError
)

// Render strategies.
const (
	RedirectToBuffer = internal.RedirectToBuffer
	RedirectToRender = internal.RedirectToRender
	OnePass          = internal.OnePass
)

// Exception display modes.
const (
	ShowExceptionPage     = internal.ShowExceptionPage
	ShowInternalErrorPage = internal.ShowInternalErrorPage
	ShowNoExceptionPage   = internal.ShowNoExceptionPage
)

// Errors.
var (
	ErrPageExpired          = internal.ErrPageExpired
	ErrUnknownPageClass     = internal.ErrUnknownPageClass
	ErrUnauthorizedListener = internal.ErrUnauthorizedListener
	ErrUnauthorizedPage     = internal.ErrUnauthorizedPage
	ErrTooManyRestarts      = internal.ErrTooManyRestarts
	ErrInvalidSettings      = internal.ErrInvalidSettings
)

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := loom.New(
//	    loom.WithHomePage("Home"),
//	    loom.WithPage("Home", pages.NewHome),
//	    loom.WithMarkup(templates, "markup"),
//	)
//
//	err := app.Run(":8080", loom.Logger(slog))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// Run starts a multi-domain HTTP server and blocks until shutdown.
// Use this for composing multiple Apps under different domain patterns.
func Run(opts ...RunOption) error {
	return internal.Run(opts...)
}

// DefaultSettings returns the settings used when none are given.
func DefaultSettings() Settings { return internal.DefaultSettings() }

// ParseSettings decodes YAML settings on top of the defaults.
func ParseSettings(data []byte) (Settings, error) { return internal.ParseSettings(data) }

// LoadSettings reads and parses a YAML settings file.
func LoadSettings(fsys fs.FS, name string) (Settings, error) {
	return internal.LoadSettings(fsys, name)
}

// Control flow

// RestartResponse abandons the current response and answers with a new
// page of class. Return it from listeners and page factories.
func RestartResponse(class string, params *PageParameters) error {
	return internal.RestartResponse(class, params)
}

// RestartResponseAtInterceptPage redirects to class, a sign-in page for
// example, remembering the requested URL.
func RestartResponseAtInterceptPage(class string, params *PageParameters) error {
	return internal.RestartResponseAtInterceptPage(class, params)
}

// ContinueToOriginalDestination returns the restart back to the URL
// remembered by RestartResponseAtInterceptPage, or nil when there is none.
func ContinueToOriginalDestination(c component.Cycle) error {
	return internal.ContinueToOriginalDestination(c)
}

// NewHTTPError creates an error answering the request with code.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

// App options

// WithSettings replaces the settings.
func WithSettings(s Settings) Option { return internal.WithSettings(s) }

// WithRenderStrategy sets how pages reach the client after a listener call.
func WithRenderStrategy(s RenderStrategy) Option { return internal.WithRenderStrategy(s) }

// WithExceptionDisplay sets how unexpected errors are shown.
func WithExceptionDisplay(d ExceptionDisplay) Option { return internal.WithExceptionDisplay(d) }

// WithMultiWindowSupport gives pages opened in another window their own page map.
func WithMultiWindowSupport(enabled bool) Option { return internal.WithMultiWindowSupport(enabled) }

// WithStripWicketTags removes wicket: tags and attributes from the output.
func WithStripWicketTags(strip bool) Option { return internal.WithStripWicketTags(strip) }

// WithPage registers a page class.
func WithPage(class string, factory PageFactory) Option { return internal.WithPage(class, factory) }

// WithMount serves class at a path template.
func WithMount(path, class string) Option { return internal.WithMount(path, class) }

// WithHomePage sets the page served at the application root.
func WithHomePage(class string) Option { return internal.WithHomePage(class) }

// WithAccessDeniedPage sets the page shown for unauthorized requests.
func WithAccessDeniedPage(class string) Option { return internal.WithAccessDeniedPage(class) }

// WithPageExpiredPage sets the page shown when a stored page is gone.
func WithPageExpiredPage(class string) Option { return internal.WithPageExpiredPage(class) }

// WithInternalErrorPage sets the page shown by ShowInternalErrorPage.
func WithInternalErrorPage(class string) Option { return internal.WithInternalErrorPage(class) }

// WithMarkup loads page and panel markup from fsys.
func WithMarkup(fsys fs.FS, subDir string, opts ...markup.LoaderOption) Option {
	return internal.WithMarkup(fsys, subDir, opts...)
}

// WithMarkupLoader sets a custom markup loader.
func WithMarkupLoader(l component.MarkupLoader) Option { return internal.WithMarkupLoader(l) }

// WithI18n resolves <wicket:message> keys through svc.
func WithI18n(svc *i18n.I18n, namespace string) Option { return internal.WithI18n(svc, namespace) }

// WithAuthorizer checks page instantiation and component actions.
func WithAuthorizer(a component.Authorizer) Option { return internal.WithAuthorizer(a) }

// WithBundles registers header bundles.
func WithBundles(bundles ...*header.Bundle) Option { return internal.WithBundles(bundles...) }

// WithResource serves h at /resources/key.
func WithResource(key string, h http.Handler) Option { return internal.WithResource(key, h) }

// WithListener registers a custom listener interface.
func WithListener(l Listener) Option { return internal.WithListener(l) }

// WithSession stores sessions in store.
//
// Example:
//
//	loom.New(
//	    loom.WithSession(session.NewPostgresStore(pool),
//	        loom.WithSessionSecret(os.Getenv("SESSION_SECRET")),
//	    ),
//	)
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithSessionJanitor deletes expired sessions on a cron schedule.
func WithSessionJanitor(schedule string) Option { return internal.WithSessionJanitor(schedule) }

// WithBufferStore sets where redirect buffers are kept.
func WithBufferStore(s BufferStore) Option { return internal.WithBufferStore(s) }

// WithRedisBuffers keeps redirect buffers in Redis.
func WithRedisBuffers(client redis.UniversalClient) Option { return internal.WithRedisBuffers(client) }

// WithExceptionMapper replaces the default exception mapper.
func WithExceptionMapper(m ExceptionMapper) Option { return internal.WithExceptionMapper(m) }

// WithCycleListener adds request cycle listeners.
func WithCycleListener(l ...RequestCycleListener) Option { return internal.WithCycleListener(l...) }

// WithRequestLogger logs one line per request at level.
func WithRequestLogger(l *slog.Logger, level slog.Level) Option {
	return internal.WithCycleListener(internal.NewRequestLogger(l, level))
}

// WithExternalHandler serves requests no page or resource answers.
func WithExternalHandler(h http.Handler) Option { return internal.WithExternalHandler(h) }

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithMiddleware(mw...)
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
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
//
// Example:
//
//	loom.New(
//	    loom.WithLogger("web", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithShutdownHook runs fn when the App shuts down.
func WithShutdownHook(fn func(context.Context) error) Option {
	return internal.WithShutdownHook(fn)
}

// Session options

// WithSessionCookieName sets the session cookie name. Default: "__sid".
func WithSessionCookieName(name string) SessionOption { return internal.WithSessionCookieName(name) }

// WithSessionMaxAge sets the session lifetime in seconds.
func WithSessionMaxAge(seconds int) SessionOption { return internal.WithSessionMaxAge(seconds) }

// WithSessionSecret signs the session cookie. It needs at least 32 bytes.
func WithSessionSecret(secret string) SessionOption { return internal.WithSessionSecret(secret) }

// WithSessionCookie configures the session cookie attributes.
//
// Example:
//
//	loom.WithSessionCookie(cookie.WithSecure(true), cookie.WithSameSite(http.SameSiteStrictMode))
func WithSessionCookie(opts ...cookie.Option) SessionOption {
	return internal.WithSessionCookie(opts...)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Address sets the HTTP server address.
// Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the server logger.
// If nil, logging is disabled.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// This applies to both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run during server startup.
// Hooks run after the port is bound but before serving requests.
// If any hook fails, the server stops and returns the error.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
//
// Example:
//
//	loom.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// Domain maps a host pattern to an App.
// Patterns: "admin.example.com" (exact) or "*.example.com" (wildcard)
func Domain(pattern string, app *App) RunOption {
	return internal.Domain(pattern, app)
}

// Fallback sets the default App for requests that don't match any domain.
// If no domains are configured, the fallback becomes the main handler.
func Fallback(app *App) RunOption {
	return internal.Fallback(app)
}

// WithContext sets a custom base context for signal handling.
// Defaults to context.Background() if not set.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}
