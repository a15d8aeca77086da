package loom_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom"
	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/hostrouter"
	"github.com/dmitrymomot/loom/pkg/markup"
	"github.com/dmitrymomot/loom/pkg/tester"
)

const helloMarkup = `<html><body><h1 id="greeting" wicket:id="greeting">Hello</h1></body></html>`

func helloPage(_ component.Cycle, params *loom.PageParameters) (*component.Page, error) {
	name, ok := params.Get("name")
	if !ok {
		name = "world"
	}
	p := component.NewPage("Hello", params, component.Stateless())
	p.MustAdd(component.NewLabel("greeting", component.Of("Hello, "+name)))
	return p, nil
}

func newApp(opts ...loom.Option) *loom.App {
	l := markup.NewLoader(nil)
	l.Register("Hello", helloMarkup)
	return loom.New(append([]loom.Option{
		loom.WithMarkupLoader(l),
		loom.WithHomePage("Hello"),
		loom.WithPage("Hello", helloPage),
		loom.WithMount("/hello", "Hello"),
	}, opts...)...)
}

func TestApp(t *testing.T) {
	t.Parallel()

	t.Run("home page", func(t *testing.T) {
		t.Parallel()
		resp := tester.New(t, newApp()).Get("/")
		require.Equal(t, http.StatusOK, resp.Status)
		require.Equal(t, "Hello, world", resp.Text("#greeting"))
	})

	t.Run("mounted page reads query parameters", func(t *testing.T) {
		t.Parallel()
		resp := tester.New(t, newApp()).Get("/hello?name=ada")
		require.Equal(t, http.StatusOK, resp.Status)
		require.Equal(t, "Hello, ada", resp.Text("#greeting"))
	})

	t.Run("unknown bookmarkable class", func(t *testing.T) {
		t.Parallel()
		resp := tester.New(t, newApp()).Get("/?wicket:bookmarkablePage=:Missing")
		require.Equal(t, http.StatusNotFound, resp.Status)
	})

	t.Run("middleware wraps every route", func(t *testing.T) {
		t.Parallel()
		app := newApp(loom.WithMiddleware(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-App", "loom")
				next.ServeHTTP(w, r)
			})
		}))
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello", nil))
		require.Equal(t, "loom", rec.Header().Get("X-App"))
	})

	t.Run("paths without a page go to the external handler", func(t *testing.T) {
		t.Parallel()
		app := newApp(loom.WithExternalHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "external "+r.URL.Path)
		})))
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "external /api/ping", rec.Body.String())
	})

	t.Run("no external handler is a 404", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		newApp().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("static files", func(t *testing.T) {
		t.Parallel()
		app := newApp(loom.WithStaticFiles("/static/", fstest.MapFS{
			"public/app.css": {Data: []byte("body{}")},
		}, "public"))

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "body{}", rec.Body.String())
		require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

		rec = httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("health endpoints", func(t *testing.T) {
		t.Parallel()
		app := newApp(loom.WithHealthChecks(
			loom.WithLivenessPath("/live"),
			loom.WithReadinessCheck("store", func(context.Context) error { return errors.New("down") }),
		))

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

// freeAddr returns a loopback address that was free a moment ago.
func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

// waitReady polls addr until the server accepts connections.
func waitReady(t *testing.T, addr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		c, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = c.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("needs a domain or a fallback", func(t *testing.T) {
		t.Parallel()
		err := loom.Run(loom.Address(freeAddr(t)))
		require.Error(t, err)
	})

	t.Run("failing startup hook aborts", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		err := loom.Run(
			loom.Fallback(newApp()),
			loom.Address(freeAddr(t)),
			loom.StartupHook(func(context.Context) error { return boom }),
		)
		require.ErrorIs(t, err, boom)
	})

	t.Run("routes by host and shuts down with the context", func(t *testing.T) {
		t.Parallel()

		tenant := newApp(loom.WithExternalHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub, _ := hostrouter.Subdomain(r.Context())
			_, _ = io.WriteString(w, "tenant "+sub)
		})))
		admin := newApp(loom.WithExternalHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "admin")
		})))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		addr := freeAddr(t)
		var order []string
		done := make(chan error, 1)
		go func() {
			done <- loom.Run(
				loom.Domain("admin.example.com", admin),
				loom.Domain("*.example.com", tenant),
				loom.Address(addr),
				loom.WithContext(ctx),
				loom.ShutdownHook(func(context.Context) error {
					order = append(order, "first")
					return nil
				}),
				loom.ShutdownHook(func(context.Context) error {
					order = append(order, "second")
					return nil
				}),
			)
		}()
		waitReady(t, addr)

		get := func(host string) (int, string) {
			req, err := http.NewRequest(http.MethodGet, "http://"+addr+"/api", nil)
			require.NoError(t, err)
			req.Host = host
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			return resp.StatusCode, strings.TrimSpace(string(body))
		}

		_, body := get("admin.example.com")
		require.Equal(t, "admin", body)

		_, body = get("shop.example.com:8080")
		require.Equal(t, "tenant shop", body)

		status, _ := get("other.org")
		require.Equal(t, http.StatusNotFound, status)

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down")
		}
		require.Equal(t, []string{"first", "second"}, order)
	})
}
