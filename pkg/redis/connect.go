package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config describes a Redis connection. Zero fields fall back to defaults.
type Config struct {
	URL           string        `yaml:"url"`
	PoolSize      int           `yaml:"pool_size"`
	MinIdleConns  int           `yaml:"min_idle_conns"`
	MaxIdleTime   time.Duration `yaml:"max_idle_time"`
	MaxActiveTime time.Duration `yaml:"max_active_time"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	DialTimeout   time.Duration `yaml:"dial_timeout"`
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns == 0 {
		c.MinIdleConns = 2
	}
	if c.MaxIdleTime == 0 {
		c.MaxIdleTime = 10 * time.Minute
	}
	if c.MaxActiveTime == 0 {
		c.MaxActiveTime = 30 * time.Minute
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = 2 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	return c
}

// Options converts the config into go-redis client options.
func (c Config) Options() (*redis.Options, error) {
	if c.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(c.URL, "redis://") && !strings.HasPrefix(c.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	c = c.withDefaults()
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	opts.PoolSize = c.PoolSize
	opts.MinIdleConns = c.MinIdleConns
	opts.ConnMaxIdleTime = c.MaxIdleTime
	opts.ConnMaxLifetime = c.MaxActiveTime
	opts.ReadTimeout = c.ReadTimeout
	opts.WriteTimeout = c.WriteTimeout
	opts.DialTimeout = c.DialTimeout
	return opts, nil
}

// Open creates a Redis client and pings it, retrying with linear backoff.
// Supports both redis:// and rediss:// (TLS) URL schemes.
//
// Example:
//
//	client, err := redis.Open(ctx, redis.Config{URL: "redis://localhost:6379/0"})
func Open(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return connect(ctx, opts, cfg.RetryAttempts, cfg.RetryInterval)
}

// connect establishes a connection with retry logic.
func connect(ctx context.Context, opts *redis.Options, attempts int, interval time.Duration) (redis.UniversalClient, error) {
	attempts = max(attempts, 1)

	var lastErr error
	for i := range attempts {
		client := redis.NewClient(opts)

		lastErr = client.Ping(ctx).Err()
		if lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == attempts-1 {
			break
		}
		if waitErr := wait(ctx, time.Duration(i+1)*interval); waitErr != nil {
			return nil, errors.Join(ErrConnectionFailed, waitErr)
		}
	}

	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
