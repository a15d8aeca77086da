package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound  = errors.New("cache: entry not found")
	ErrClosed    = errors.New("cache: closed")
	ErrMarshal   = errors.New("cache: marshal value")
	ErrUnmarshal = errors.New("cache: unmarshal value")
)

// Cache stores values under string keys. A positive ttl expires the entry,
// zero applies the cache default and a negative ttl keeps it until removed.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Taker is implemented by caches that read and remove an entry atomically.
type Taker[V any] interface {
	Take(ctx context.Context, key string) (V, error)
}

// Take reads and removes key, atomically when c is a Taker.
func Take[V any](ctx context.Context, c Cache[V], key string) (V, error) {
	if t, ok := c.(Taker[V]); ok {
		return t.Take(ctx, key)
	}
	v, err := c.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := c.Delete(ctx, key); err != nil {
		var zero V
		return zero, err
	}
	return v, nil
}

// Marshaler converts values for byte oriented backends.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// JSONMarshaler uses encoding/json.
type JSONMarshaler[V any] struct{}

func (JSONMarshaler[V]) Marshal(v V) ([]byte, error) {
	return wrap(ErrMarshal)(json.Marshal(v))
}

func (JSONMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// MsgpackMarshaler uses MessagePack, which keeps byte slices such as
// rendered bodies binary.
type MsgpackMarshaler[V any] struct{}

func (MsgpackMarshaler[V]) Marshal(v V) ([]byte, error) {
	return wrap(ErrMarshal)(msgpack.Marshal(v))
}

func (MsgpackMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

func wrap(sentinel error) func([]byte, error) ([]byte, error) {
	return func(b []byte, err error) ([]byte, error) {
		if err != nil {
			return nil, errors.Join(sentinel, err)
		}
		return b, nil
	}
}

// flights maps a cache instance to its singleflight group.
var flights sync.Map

type computed[V any] struct {
	v   V
	ttl time.Duration
}

// GetOrSet returns the cached value of key or stores the result of fn.
// Concurrent misses of one key on one cache share a single fn call. Errors
// from fn are returned and nothing is stored.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}
	g, _ := flights.LoadOrStore(c, new(singleflight.Group))
	res, err, _ := g.(*singleflight.Group).Do(key, func() (any, error) {
		v, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		_ = c.Set(ctx, key, v, ttl)
		return computed[V]{v, ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(computed[V]).v, nil
}
