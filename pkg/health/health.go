package health

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultTimeout = 5 * time.Second

// Check states.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// ErrCheckTimeout replaces the error of a check that ran out of time.
var ErrCheckTimeout = errors.New("health: check timeout")

// CheckFunc probes one dependency, such as a session store or Redis.
type CheckFunc func(ctx context.Context) error

// Checks are named probes.
type Checks map[string]CheckFunc

// Response is the readiness report.
type Response struct {
	Status string           `json:"status"`
	Checks map[string]Check `json:"checks,omitempty"`
}

// Check is the outcome of one probe.
type Check struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures Run and the handlers.
type Option func(*config)

// WithTimeout bounds every run. Default 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger reports failing checks to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{timeout: defaultTimeout, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes checks in parallel. The response is unhealthy when any check
// fails.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	return run(ctx, checks, newConfig(opts...))
}

func run(ctx context.Context, checks Checks, cfg *config) *Response {
	resp := &Response{Status: StatusHealthy}
	if len(checks) == 0 {
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var mu sync.Mutex
	resp.Checks = make(map[string]Check, len(checks))

	// Failures are recorded, never returned, so one check cannot cancel the others.
	var g errgroup.Group
	for name, check := range checks {
		g.Go(func() error {
			start := time.Now()
			err := check(ctx)
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = errors.Join(ErrCheckTimeout, err)
			}

			c := Check{Status: StatusHealthy, Duration: time.Since(start).Round(time.Microsecond).String()}
			if err != nil {
				c.Status = StatusUnhealthy
				c.Error = err.Error()
				cfg.logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
			}

			mu.Lock()
			defer mu.Unlock()
			resp.Checks[name] = c
			if err != nil {
				resp.Status = StatusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()
	return resp
}
