package id_test

import (
	"encoding/base64"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/id"
)

var crockfordRe = regexp.MustCompile(`^[0-9A-HJ-KMNP-TV-Z]{26}$`)

func TestNewULID(t *testing.T) {
	t.Parallel()

	t.Run("format", func(t *testing.T) {
		t.Parallel()
		u := id.NewULID()
		require.Len(t, u, id.ULIDLength)
		require.Regexp(t, crockfordRe, u)
	})

	t.Run("unique under concurrency", func(t *testing.T) {
		t.Parallel()
		const n = 1000
		var (
			mu   sync.Mutex
			seen = make(map[string]struct{}, n)
			wg   sync.WaitGroup
		)
		for range n {
			wg.Go(func() {
				u := id.NewULID()
				mu.Lock()
				seen[u] = struct{}{}
				mu.Unlock()
			})
		}
		wg.Wait()
		require.Len(t, seen, n)
	})

	t.Run("sorts by creation time", func(t *testing.T) {
		t.Parallel()
		a := id.NewULID()
		time.Sleep(2 * time.Millisecond)
		b := id.NewULID()
		require.Less(t, a, b)
	})
}

func TestTime(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		before := time.Now().Truncate(time.Millisecond)
		got, err := id.Time(id.NewULID())
		require.NoError(t, err)
		require.WithinDuration(t, before, got, time.Second)
		require.False(t, got.Before(before))
	})

	t.Run("smallest timestamp", func(t *testing.T) {
		t.Parallel()
		got, err := id.Time("00000000010000000000000000")
		require.NoError(t, err)
		require.Equal(t, int64(1), got.UnixMilli())
	})

	for name, in := range map[string]string{
		"too short":     "01ARZ3NDEK",
		"bad character": "0000000U010000000000000000",
		"empty":         "",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := id.Time(in)
			require.ErrorIs(t, err, id.ErrInvalidULID)
		})
	}
}

func TestNewToken(t *testing.T) {
	t.Parallel()

	tok, err := id.NewToken(32)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err)
	require.Len(t, raw, 32)

	other, err := id.NewToken(32)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)
}

func BenchmarkNewULID(b *testing.B) {
	for b.Loop() {
		_ = id.NewULID()
	}
}
