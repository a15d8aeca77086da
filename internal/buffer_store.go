package internal

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/loom/pkg/cache"
)

// BufferedResponse is a rendered page kept between a redirect and the
// request following it.
type BufferedResponse struct {
	Header map[string][]string `msgpack:"h"`
	Body   []byte              `msgpack:"b"`
	Status int                 `msgpack:"s"`
}

// WriteTo writes the buffer to w.
func (b *BufferedResponse) WriteTo(w http.ResponseWriter) error {
	for k, vs := range b.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := b.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err := w.Write(b.Body)
	return err
}

// BufferStore keeps buffered responses keyed by session ID and URL. Take
// returns a buffer once.
type BufferStore interface {
	Put(ctx context.Context, sessionID, url string, b *BufferedResponse) error
	Take(ctx context.Context, sessionID, url string) (*BufferedResponse, bool, error)
}

func bufferKey(sessionID, url string) string {
	return sessionID + "|" + url
}

// MemoryBufferStore keeps buffers in process memory.
type MemoryBufferStore struct {
	c   *cache.Memory[*BufferedResponse]
	ttl time.Duration
}

// NewMemoryBufferStore creates a store dropping buffers not collected within ttl.
func NewMemoryBufferStore(ttl time.Duration) *MemoryBufferStore {
	if ttl <= 0 {
		ttl = DefaultBufferTTL
	}
	return &MemoryBufferStore{
		c:   cache.NewMemory[*BufferedResponse](cache.WithDefaultTTL(ttl), cache.WithMaxEntries(10000)),
		ttl: ttl,
	}
}

func (s *MemoryBufferStore) Put(ctx context.Context, sessionID, url string, b *BufferedResponse) error {
	return s.c.Set(ctx, bufferKey(sessionID, url), b, s.ttl)
}

func (s *MemoryBufferStore) Take(ctx context.Context, sessionID, url string) (*BufferedResponse, bool, error) {
	return take(ctx, s.c, bufferKey(sessionID, url))
}

// Close stops the expiry janitor.
func (s *MemoryBufferStore) Close() error { return s.c.Close() }

// RedisBufferStore keeps buffers in Redis, so the request following the
// redirect may land on another instance.
type RedisBufferStore struct {
	c   *cache.Redis[BufferedResponse]
	ttl time.Duration
}

// NewRedisBufferStore creates a Redis backed store.
func NewRedisBufferStore(client redis.UniversalClient, ttl time.Duration) *RedisBufferStore {
	if ttl <= 0 {
		ttl = DefaultBufferTTL
	}
	c := cache.NewRedis(client, cache.MsgpackMarshaler[BufferedResponse]{},
		cache.WithPrefix("loom:buffer"),
		cache.WithRedisDefaultTTL(ttl),
	)
	return &RedisBufferStore{c: c, ttl: ttl}
}

func (s *RedisBufferStore) Put(ctx context.Context, sessionID, url string, b *BufferedResponse) error {
	return s.c.Set(ctx, bufferKey(sessionID, url), *b, s.ttl)
}

func (s *RedisBufferStore) Take(ctx context.Context, sessionID, url string) (*BufferedResponse, bool, error) {
	b, found, err := take(ctx, s.c, bufferKey(sessionID, url))
	if !found || err != nil {
		return nil, found, err
	}
	return &b, true, nil
}

func take[V any](ctx context.Context, c cache.Cache[V], key string) (V, bool, error) {
	v, err := cache.Take(ctx, c, key)
	switch {
	case errors.Is(err, cache.ErrNotFound):
		var zero V
		return zero, false, nil
	case err != nil:
		var zero V
		return zero, false, err
	}
	return v, true, nil
}
