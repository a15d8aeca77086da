package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name string
		url  string
		err  error
	}{
		{name: "empty url", url: "", err: ErrEmptyConnectionURL},
		{name: "http scheme", url: "http://localhost:6379", err: ErrFailedToParseURL},
		{name: "no scheme", url: "localhost:6379", err: ErrFailedToParseURL},
		{name: "invalid port", url: "redis://localhost:notaport", err: ErrFailedToParseURL},
		{name: "invalid database", url: "redis://localhost:6379/notanumber", err: ErrFailedToParseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := Open(ctx, Config{URL: tt.url})
			require.ErrorIs(t, err, tt.err)
			require.Nil(t, client)
		})
	}
}

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		opts, err := Config{URL: "redis://localhost:6379/2"}.Options()
		require.NoError(t, err)
		require.Equal(t, 2, opts.DB)
		require.Equal(t, 10, opts.PoolSize)
		require.Equal(t, 3*time.Second, opts.ReadTimeout)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()

		opts, err := Config{URL: "rediss://localhost:6380", PoolSize: 50, DialTimeout: time.Second}.Options()
		require.NoError(t, err)
		require.Equal(t, 50, opts.PoolSize)
		require.Equal(t, time.Second, opts.DialTimeout)
		require.NotNil(t, opts.TLSConfig)
	})
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := Healthcheck(nil)(context.Background())
	require.ErrorIs(t, err, ErrHealthcheckFailed)
}

type mockCloser struct {
	err    error
	closed bool
}

func (m *mockCloser) Close() error {
	m.closed = true
	return m.err
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	t.Run("closes the client", func(t *testing.T) {
		t.Parallel()

		c := &mockCloser{}
		require.NoError(t, Shutdown(c)(context.Background()))
		require.True(t, c.closed)
	})

	t.Run("propagates close error", func(t *testing.T) {
		t.Parallel()

		want := errors.New("close error")
		c := &mockCloser{err: want}
		require.ErrorIs(t, Shutdown(c)(context.Background()), want)
	})
}

func TestWait(t *testing.T) {
	t.Parallel()

	t.Run("cancelled context returns immediately", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		require.ErrorIs(t, wait(ctx, 10*time.Second), context.Canceled)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("waits for the duration", func(t *testing.T) {
		t.Parallel()

		start := time.Now()
		require.NoError(t, wait(context.Background(), 20*time.Millisecond))
		require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})
}
