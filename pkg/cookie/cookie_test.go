package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/cookie"
)

const secret = "0123456789abcdef0123456789abcdef"

// roundTrip returns a request carrying the cookies set on rec.
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestManager_Plain(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	rec := httptest.NewRecorder()
	m.Set(rec, "theme", "dark", 3600)

	c := rec.Result().Cookies()[0]
	require.Equal(t, "/", c.Path)
	require.True(t, c.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.Equal(t, 3600, c.MaxAge)

	v, err := m.Get(roundTrip(rec), "theme")
	require.NoError(t, err)
	require.Equal(t, "dark", v)

	_, err = m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "theme")
	require.ErrorIs(t, err, cookie.ErrNotFound)
}

func TestManager_Attributes(t *testing.T) {
	t.Parallel()

	m := cookie.New(
		cookie.WithDomain("example.com"),
		cookie.WithPath("/app"),
		cookie.WithSecure(true),
		cookie.WithHTTPOnly(false),
		cookie.WithSameSite(http.SameSiteStrictMode),
	)
	rec := httptest.NewRecorder()
	m.Delete(rec, "__sid")

	c := rec.Result().Cookies()[0]
	require.Equal(t, "example.com", c.Domain)
	require.Equal(t, "/app", c.Path)
	require.True(t, c.Secure)
	require.False(t, c.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, c.SameSite)
	require.Negative(t, c.MaxAge)
}

func TestManager_Signed(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret(secret))
		require.True(t, m.CanSign())

		rec := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(rec, "__sid", "token-1", 60))

		v, err := m.GetSigned(roundTrip(rec), "__sid")
		require.NoError(t, err)
		require.Equal(t, "token-1", v)
	})

	t.Run("tampered value", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret(secret))
		rec := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(rec, "__sid", "token-1", 60))

		raw := rec.Result().Cookies()[0].Value
		_, sig, _ := strings.Cut(raw, ".")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "__sid", Value: "dG9rZW4tMg." + sig})

		_, err := m.GetSigned(req, "__sid")
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})

	t.Run("value moved to another cookie", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret(secret))
		rec := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(rec, "a", "v", 60))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "b", Value: rec.Result().Cookies()[0].Value})

		_, err := m.GetSigned(req, "b")
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})

	t.Run("unsigned value", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret(secret))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "__sid", Value: "plain"})

		_, err := m.GetSigned(req, "__sid")
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})

	t.Run("short secret is ignored", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret("short"))
		require.False(t, m.CanSign())
		require.ErrorIs(t, m.SetSigned(httptest.NewRecorder(), "a", "v", 0), cookie.ErrNoSecret)
		_, err := m.GetSigned(httptest.NewRequest(http.MethodGet, "/", nil), "a")
		require.ErrorIs(t, err, cookie.ErrNoSecret)
	})
}
