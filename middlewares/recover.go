package middlewares

import (
	"log/slog"
	"net/http"
	"runtime"

	"github.com/dmitrymomot/loom/pkg/logger"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	Logger            *slog.Logger
	OnPanic           func(w http.ResponseWriter, r *http.Request, err *PanicError)
	StackSize         int  // Max stack trace size (default: 4096)
	DisablePrintStack bool // Disable stack trace in logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = size
	}
}

// WithRecoverDisablePrintStack disables including stack trace in logs.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// WithRecoverLogger sets the logger panics are reported to.
func WithRecoverLogger(l *slog.Logger) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.Logger = l
	}
}

// WithRecoverHandler replaces the default 500 response.
func WithRecoverHandler(fn func(w http.ResponseWriter, r *http.Request, err *PanicError)) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.OnPanic = fn
	}
}

// Recover returns middleware that recovers from panics outside the request
// cycle, such as in static file or external handlers. Page and listener
// panics are mapped by the request cycle itself.
// Request ID is automatically included via RequestIDExtractor() if configured.
func Recover(opts ...RecoverOption) func(http.Handler) http.Handler {
	cfg := &RecoverConfig{
		StackSize: DefaultStackSize,
		Logger:    logger.NewNope(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				var stack []byte
				// Allocate buffer only if stack traces are enabled
				if !cfg.DisablePrintStack {
					stack = make([]byte, cfg.StackSize)
					stack = stack[:runtime.Stack(stack, false)]
					cfg.Logger.ErrorContext(r.Context(), "panic recovered", "panic", v, "stack", string(stack))
				} else {
					cfg.Logger.ErrorContext(r.Context(), "panic recovered", "panic", v)
				}

				pe := &PanicError{Value: v, Stack: stack}
				if cfg.OnPanic != nil {
					cfg.OnPanic(w, r, pe)
					return
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
