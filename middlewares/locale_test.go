package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/internal"
	"github.com/dmitrymomot/loom/middlewares"
	"github.com/dmitrymomot/loom/pkg/i18n"
)

func newI18n(t *testing.T) *i18n.I18n {
	t.Helper()
	svc, err := i18n.New(
		i18n.WithDefaultLanguage("en"),
		i18n.WithLanguages("en", "de", "pl"),
		i18n.WithTranslations("en", "app", map[string]any{"hello": "Hello"}),
		i18n.WithTranslations("de", "app", map[string]any{"hello": "Hallo"}),
		i18n.WithTranslations("pl", "app", map[string]any{"hello": "Cześć"}),
	)
	require.NoError(t, err)
	return svc
}

func TestLocale(t *testing.T) {
	t.Parallel()

	svc := newI18n(t)
	mw := middlewares.Locale(svc, middlewares.WithLocaleNamespace("app"))

	resolve := func(req *http.Request) (lang, greeting, locale string) {
		serve(mw, func(w http.ResponseWriter, r *http.Request) {
			lang = middlewares.GetLanguage(r.Context())
			if tr := middlewares.GetTranslator(r.Context()); tr != nil {
				greeting = tr.T("hello")
			}
			if tag, ok := internal.LocaleFromContext(r.Context()); ok {
				locale = tag.String()
			}
		}, req)
		return lang, greeting, locale
	}

	t.Run("accept-language", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.5")

		lang, greeting, locale := resolve(req)
		require.Equal(t, "de", lang)
		require.Equal(t, "Hallo", greeting)
		require.Equal(t, "de", locale)
	})

	t.Run("cookie beats the header", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "de")
		req.AddCookie(&http.Cookie{Name: "lang", Value: "pl"})

		lang, greeting, _ := resolve(req)
		require.Equal(t, "pl", lang)
		require.Equal(t, "Cześć", greeting)
	})

	t.Run("query beats the cookie", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/?lang=de", nil)
		req.AddCookie(&http.Cookie{Name: "lang", Value: "pl"})

		lang, _, _ := resolve(req)
		require.Equal(t, "de", lang)
	})

	t.Run("falls back to the default language", func(t *testing.T) {
		t.Parallel()
		lang, greeting, _ := resolve(httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, "en", lang)
		require.Equal(t, "Hello", greeting)
	})

	t.Run("malformed language falls back", func(t *testing.T) {
		t.Parallel()
		lang, _, _ := resolve(httptest.NewRequest(http.MethodGet, "/?lang=%21%21", nil))
		require.Equal(t, "en", lang)
	})

	t.Run("custom extractor", func(t *testing.T) {
		t.Parallel()
		mw := middlewares.Locale(svc, middlewares.WithLocaleExtractor(
			internal.NewExtractor(internal.FromHeader("X-Lang")),
		))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Lang", "pl")
		req.Header.Set("Accept-Language", "de")

		var lang string
		serve(mw, func(w http.ResponseWriter, r *http.Request) {
			lang = middlewares.GetLanguage(r.Context())
		}, req)
		require.Equal(t, "pl", lang)
	})
}
