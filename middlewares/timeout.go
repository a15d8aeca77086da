package middlewares

import (
	"net/http"
	"time"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// TimeoutConfig configures the timeout middleware.
type TimeoutConfig struct {
	Message string
	Timeout time.Duration
}

// TimeoutOption configures TimeoutConfig.
type TimeoutOption func(*TimeoutConfig)

// WithTimeoutMessage sets the body of the 503 response sent on timeout.
func WithTimeoutMessage(msg string) TimeoutOption {
	return func(cfg *TimeoutConfig) {
		cfg.Message = msg
	}
}

// Timeout returns middleware that bounds request handling. The request
// context carries the deadline. A handler still running when it passes is
// answered with 503 and its later writes are dropped.
//
// Rendering stops only where page code watches ctx.Done().
func Timeout(timeout time.Duration, opts ...TimeoutOption) func(http.Handler) http.Handler {
	cfg := &TimeoutConfig{
		Timeout: timeout,
		Message: "Service Unavailable",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, cfg.Timeout, cfg.Message)
	}
}
