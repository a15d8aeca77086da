package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/middlewares"
)

func corsRequest(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("default configuration allows all origins", func(t *testing.T) {
		t.Parallel()
		rec := serve(middlewares.CORS(), ok, corsRequest(http.MethodGet, "http://example.com"))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no CORS headers when Origin header is missing", func(t *testing.T) {
		t.Parallel()
		rec := serve(middlewares.CORS(), ok, corsRequest(http.MethodGet, ""))
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("specific origins list", func(t *testing.T) {
		t.Parallel()
		mw := middlewares.CORS(middlewares.WithAllowOrigins("http://allowed.com", "http://also-allowed.com"))

		rec := serve(mw, ok, corsRequest(http.MethodGet, "http://allowed.com"))
		require.Equal(t, "http://allowed.com", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, rec.Header().Values("Vary"), "Origin")

		rec = serve(mw, ok, corsRequest(http.MethodGet, "http://blocked.com"))
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("subdomain wildcard origin", func(t *testing.T) {
		t.Parallel()
		mw := middlewares.CORS(middlewares.WithAllowOrigins("https://*.example.com"))

		rec := serve(mw, ok, corsRequest(http.MethodGet, "https://shop.example.com"))
		require.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

		for _, origin := range []string{"https://example.com", "http://shop.example.com", "https://evilexample.com"} {
			rec = serve(mw, ok, corsRequest(http.MethodGet, origin))
			require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), origin)
		}
	})

	t.Run("origin func overrides the static list", func(t *testing.T) {
		t.Parallel()
		mw := middlewares.CORS(
			middlewares.WithAllowOrigins("http://static.com"),
			middlewares.WithAllowOriginFunc(func(origin string) bool {
				return origin == "http://dynamic.com"
			}),
		)

		rec := serve(mw, ok, corsRequest(http.MethodGet, "http://dynamic.com"))
		require.Equal(t, "http://dynamic.com", rec.Header().Get("Access-Control-Allow-Origin"))

		rec = serve(mw, ok, corsRequest(http.MethodGet, "http://static.com"))
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight request handling", func(t *testing.T) {
		t.Parallel()
		mw := middlewares.CORS(
			middlewares.WithAllowMethods("GET", "POST", "PUT"),
			middlewares.WithAllowHeaders("Content-Type", "X-Custom-Header"),
			middlewares.WithMaxAge(time.Hour),
		)

		called := false
		req := corsRequest(http.MethodOptions, "http://example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := serve(mw, func(w http.ResponseWriter, r *http.Request) {
			called = true
			ok(w, r)
		}, req)

		require.False(t, called)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "GET, POST, PUT", rec.Header().Get("Access-Control-Allow-Methods"))
		require.Equal(t, "Content-Type, X-Custom-Header", rec.Header().Get("Access-Control-Allow-Headers"))
		require.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("credentials mode echoes origin instead of wildcard", func(t *testing.T) {
		t.Parallel()
		mw := middlewares.CORS(
			middlewares.WithAllowCredentials(),
			middlewares.WithExposeHeaders("X-Request-ID"),
		)

		rec := serve(mw, ok, corsRequest(http.MethodGet, "http://example.com"))
		require.Equal(t, "http://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		require.Equal(t, "X-Request-ID", rec.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("options without origin reaches the handler", func(t *testing.T) {
		t.Parallel()
		rec := serve(middlewares.CORS(), ok, corsRequest(http.MethodOptions, ""))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
