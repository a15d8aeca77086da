package hostrouter_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/hostrouter"
)

func named(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, ok := hostrouter.Subdomain(r.Context())
		if ok {
			fmt.Fprintf(w, "%s/%s", name, sub)
			return
		}
		fmt.Fprint(w, name)
	})
}

func serve(h http.Handler, host string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = host
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter(t *testing.T) {
	t.Parallel()

	r := hostrouter.New(hostrouter.Routes{
		"admin.example.com": named("admin"),
		"*.example.com":     named("shop"),
		"*.eu.example.com":  named("eu"),
		"Example.ORG":       named("org"),
		"":                  named("ignored"),
	}, named("landing"))

	tests := []struct {
		host string
		want string
	}{
		{"admin.example.com", "admin"},
		{"ADMIN.example.com:8443", "admin"},
		{"acme.example.com", "shop/acme"},
		{"a.b.example.com", "shop/a.b"},
		{"acme.eu.example.com", "eu/acme"},
		{"example.org", "org"},
		{"example.com", "landing"},
		{"other.net", "landing"},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()
			rec := serve(r, tt.host)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRouter_NilFallback(t *testing.T) {
	t.Parallel()

	r := hostrouter.New(hostrouter.Routes{"a.com": named("a")}, nil)
	require.Equal(t, http.StatusNotFound, serve(r, "b.com").Code)
}

func TestHost(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"Example.com":      "example.com",
		"example.com:8080": "example.com",
		"[::1]:8080":       "[::1]",
		"127.0.0.1:80":     "127.0.0.1",
		"localhost":        "localhost",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = in
		require.Equal(t, want, hostrouter.Host(req), in)
	}
}
