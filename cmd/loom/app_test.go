package main

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/cmd/loom/guestbook"
	"github.com/dmitrymomot/loom/pkg/logger"
	"github.com/dmitrymomot/loom/pkg/tester"
)

func newServer(t *testing.T, cfg Config) (*tester.Tester, *guestbook.Book) {
	t.Helper()
	ctx := context.Background()

	b, err := openBackends(ctx, cfg, logger.NewNope())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(ctx) })

	msgs, err := guestbook.Messages()
	require.NoError(t, err)

	book := guestbook.NewBook()
	return tester.New(t, buildApp(cfg, logger.NewNope(), b, book, msgs)), book
}

func memoryConfig() Config {
	cfg := DefaultConfig()
	cfg.Session.Driver = DriverMemory
	return cfg
}

func TestBuildApp(t *testing.T) {
	t.Parallel()

	t.Run("guestbook round trip", func(t *testing.T) {
		t.Parallel()
		tt, book := newServer(t, memoryConfig())

		resp := tt.Submit(tt.Get("/"), "#sign", url.Values{"name": {"ada"}, "text": {"hi"}})
		require.Equal(t, http.StatusOK, resp.Status)
		require.Equal(t, 1, book.Len())
		require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("sqlite sessions", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		cfg.Session.SQLitePath = filepath.Join(t.TempDir(), "sessions.db")
		tt, book := newServer(t, cfg)

		resp := tt.Submit(tt.Get("/"), "#sign", url.Values{"name": {"ada"}, "text": {"hi"}})
		require.Equal(t, http.StatusOK, resp.Status)
		require.Equal(t, 1, book.Len())
	})

	t.Run("cross-origin listener call is rejected", func(t *testing.T) {
		t.Parallel()
		tt, book := newServer(t, memoryConfig())

		home := tt.Get("/")
		action, ok := home.Find("#sign").Attr("action")
		require.True(t, ok)

		ref, err := url.Parse(action)
		require.NoError(t, err)
		req, err := http.NewRequest(http.MethodPost, home.URL.ResolveReference(ref).String(),
			strings.NewReader(url.Values{"name": {"eve"}, "text": {"x"}}.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Origin", "https://evil.example.com")

		resp := tt.NoFollow().Do(req)
		require.Equal(t, http.StatusForbidden, resp.Status)
		require.Zero(t, book.Len())
	})

	t.Run("health endpoints", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		cfg.Session.SQLitePath = filepath.Join(t.TempDir(), "sessions.db")
		tt, _ := newServer(t, cfg)

		require.Equal(t, http.StatusOK, tt.Get("/health/live").Status)

		ready := tt.Get("/health/ready?format=json")
		require.Equal(t, http.StatusOK, ready.Status)
		require.Contains(t, ready.Body, "sqlite")
	})
}

func TestPrintRoutes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b, err := openBackends(ctx, memoryConfig(), logger.NewNope())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(ctx) })
	msgs, err := guestbook.Messages()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printRoutes(&out, buildApp(memoryConfig(), logger.NewNope(), b, guestbook.NewBook(), msgs)))

	s := out.String()
	require.Contains(t, s, "About")
	require.Contains(t, s, "/about")
	require.Contains(t, s, "/?wicket:bookmarkablePage=:Home")
	require.Contains(t, s, "/health/live")
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "loom version")
}
