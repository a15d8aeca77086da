package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/cache"
)

func TestMemory_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("miss returns ErrNotFound", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string]()
		defer c.Close()

		_, err := c.Get(ctx, "missing")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("stores and overwrites", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int]()
		defer c.Close()

		require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
		require.NoError(t, c.Set(ctx, "k", 2, time.Minute))

		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, 2, v)
		require.Equal(t, 1, c.Len())
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "k", "v", time.Millisecond))
		time.Sleep(5 * time.Millisecond)

		_, err := c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)
		_, err = c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("negative ttl never expires", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithDefaultTTL(time.Millisecond), cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "k", "v", -1))
		time.Sleep(5 * time.Millisecond)

		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "v", v)
	})

	t.Run("closed cache rejects writes", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string]()
		require.NoError(t, c.Close())
		require.NoError(t, c.Close())
		require.ErrorIs(t, c.Set(ctx, "k", "v", 0), cache.ErrClosed)
	})
}

func TestMemory_LRU(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[int](cache.WithMaxEntries(2), cache.WithCleanupInterval(0))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "a", 1, -1))
	require.NoError(t, c.Set(ctx, "b", 2, -1))

	// touching a makes b the oldest
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, c.Keys())

	require.NoError(t, c.Set(ctx, "c", 3, -1))
	require.Equal(t, []string{"c", "a"}, c.Keys())
	_, err = c.Get(ctx, "b")
	require.ErrorIs(t, err, cache.ErrNotFound)

	// peek does not reorder
	v, ok := c.Peek("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, []string{"c", "a"}, c.Keys())
}

func TestMemory_Take(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[string]()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "once", "body", time.Minute))

	v, err := cache.Take[string](ctx, c, "once")
	require.NoError(t, err)
	require.Equal(t, "body", v)

	_, err = cache.Take[string](ctx, c, "once")
	require.ErrorIs(t, err, cache.ErrNotFound)
	require.Zero(t, c.Len())
}

func TestGetOrSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("computes once under concurrency", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string]()
		defer c.Close()

		var calls atomic.Int32
		release := make(chan struct{})

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := cache.GetOrSet(ctx, c, "k", func(context.Context) (string, time.Duration, error) {
					calls.Add(1)
					<-release
					return "v", time.Minute, nil
				})
				require.NoError(t, err)
				require.Equal(t, "v", v)
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("errors are not cached", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string]()
		defer c.Close()

		boom := errors.New("boom")
		_, err := cache.GetOrSet(ctx, c, "k", func(context.Context) (string, time.Duration, error) {
			return "", 0, boom
		})
		require.ErrorIs(t, err, boom)

		_, err = c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("same key in different caches", func(t *testing.T) {
		t.Parallel()

		a := cache.NewMemory[string]()
		defer a.Close()
		b := cache.NewMemory[int]()
		defer b.Close()

		sv, err := cache.GetOrSet(ctx, a, "shared", func(context.Context) (string, time.Duration, error) {
			iv, err := cache.GetOrSet(ctx, b, "shared", func(context.Context) (int, time.Duration, error) {
				return 7, 0, nil
			})
			require.NoError(t, err)
			require.Equal(t, 7, iv)
			return "s", 0, nil
		})
		require.NoError(t, err)
		require.Equal(t, "s", sv)
	})
}

func TestMsgpackMarshaler(t *testing.T) {
	t.Parallel()

	type payload struct {
		Status int
		Header map[string][]string
		Body   []byte
	}

	m := cache.MsgpackMarshaler[payload]{}
	in := payload{Status: 200, Header: map[string][]string{"Content-Type": {"text/html"}}, Body: []byte("<p>hi</p>")}

	data, err := m.Marshal(in)
	require.NoError(t, err)

	out, err := m.Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, in, out)

	_, err = m.Unmarshal([]byte{0xc1})
	require.ErrorIs(t, err, cache.ErrUnmarshal)
}
