package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOption configures a Redis cache.
type RedisOption func(*redisConfig)

type redisConfig struct {
	prefix string
	ttl    time.Duration
}

// WithPrefix namespaces keys as "prefix:key".
func WithPrefix(prefix string) RedisOption {
	return func(c *redisConfig) { c.prefix = prefix }
}

// WithRedisDefaultTTL sets the ttl applied when Set gets zero. Default one
// hour.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(c *redisConfig) { c.ttl = d }
}

// Redis stores marshaled values in Redis. The client is owned by the caller.
type Redis[V any] struct {
	client    redis.UniversalClient
	marshaler Marshaler[V]
	cfg       redisConfig
}

// NewRedis wraps client. A nil marshaler means JSON.
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...RedisOption) *Redis[V] {
	cfg := redisConfig{ttl: time.Hour}
	for _, opt := range opts {
		opt(&cfg)
	}
	if m == nil {
		m = JSONMarshaler[V]{}
	}
	return &Redis[V]{client: client, marshaler: m, cfg: cfg}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	return r.decode(r.client.Get(ctx, r.key(key)).Bytes())
}

// Take reads and deletes key with GETDEL.
func (r *Redis[V]) Take(ctx context.Context, key string) (V, error) {
	return r.decode(r.client.GetDel(ctx, r.key(key)).Bytes())
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.marshaler.Marshal(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.cfg.ttl
	}
	// Redis reads 0 as no expiry.
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Clear deletes the prefixed keys with SCAN, or flushes the database when
// no prefix is set.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.cfg.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}
	iter := r.client.Scan(ctx, 0, r.cfg.prefix+":*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Close is a no-op.
func (r *Redis[V]) Close() error { return nil }

func (r *Redis[V]) key(k string) string {
	if r.cfg.prefix == "" {
		return k
	}
	return r.cfg.prefix + ":" + k
}

func (r *Redis[V]) decode(data []byte, err error) (V, error) {
	var zero V
	switch {
	case errors.Is(err, redis.Nil):
		return zero, ErrNotFound
	case err != nil:
		return zero, err
	}
	return r.marshaler.Unmarshal(data)
}

var (
	_ Cache[any] = (*Redis[any])(nil)
	_ Taker[any] = (*Redis[any])(nil)
)
