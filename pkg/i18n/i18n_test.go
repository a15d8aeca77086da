package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/i18n"
)

func newCatalog(t *testing.T, opts ...i18n.Option) *i18n.I18n {
	t.Helper()
	base := []i18n.Option{
		i18n.WithDefaultLanguage("en"),
		i18n.WithLanguages("pl", "de", "en"),
		i18n.WithTranslations("en", "app", map[string]any{
			"greeting": "Hello, {{name}}!",
			"only_en":  "English only",
			"nav":      map[string]any{"home": "Home"},
			"entries": map[string]any{
				"zero":  "No entries",
				"one":   "{{count}} entry",
				"other": "{{count}} entries",
			},
		}),
		i18n.WithTranslations("de", "app", map[string]any{
			"greeting": "Hallo, {{name}}!",
			"nav":      map[string]string{"home": "Start"},
		}),
		i18n.WithTranslations("de-CH", "app", map[string]any{
			"greeting": "Grüezi, {{name}}!",
		}),
		i18n.WithTranslations("pl", "app", map[string]any{
			"entries": map[string]any{
				"one":   "{{count}} wpis",
				"few":   "{{count}} wpisy",
				"many":  "{{count}} wpisów",
				"other": "{{count}} wpisu",
			},
		}),
	}
	svc, err := i18n.New(append(base, opts...)...)
	require.NoError(t, err)
	return svc
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		svc, err := i18n.New()
		require.NoError(t, err)
		require.Equal(t, i18n.DefaultLang, svc.DefaultLanguage())
		require.Equal(t, []string{"en"}, svc.Languages())
	})

	t.Run("languages start with the default", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, []string{"en", "de", "pl"}, newCatalog(t).Languages())
	})

	t.Run("empty language", func(t *testing.T) {
		t.Parallel()
		_, err := i18n.New(i18n.WithDefaultLanguage(""))
		require.ErrorIs(t, err, i18n.ErrEmptyLanguage)
		_, err = i18n.New(i18n.WithTranslations("", "app", nil))
		require.ErrorIs(t, err, i18n.ErrEmptyLanguage)
	})

	t.Run("empty namespace", func(t *testing.T) {
		t.Parallel()
		_, err := i18n.New(i18n.WithTranslations("en", "", nil))
		require.ErrorIs(t, err, i18n.ErrEmptyNamespace)
	})
}

func TestI18n_T(t *testing.T) {
	t.Parallel()

	var missing []string
	svc := newCatalog(t, i18n.WithMissingKeyHandler(func(lang, ns, key string) {
		missing = append(missing, lang+":"+ns+":"+key)
	}))

	tests := []struct {
		name string
		lang string
		key  string
		want string
	}{
		{"exact language", "de", "greeting", "Hallo, Ada!"},
		{"region", "de-CH", "greeting", "Grüezi, Ada!"},
		{"region falls back to base", "de-AT", "greeting", "Hallo, Ada!"},
		{"falls back to default", "de", "only_en", "English only"},
		{"unknown language", "fr", "greeting", "Hello, Ada!"},
		{"nested key", "de", "nav.home", "Start"},
		{"malformed language", "!!", "nav.home", "Home"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, svc.T(tt.lang, "app", tt.key, i18n.M{"name": "Ada"}), tt.name)
	}

	require.Equal(t, "nope", svc.T("de", "app", "nope"))
	require.Equal(t, []string{"de:app:nope"}, missing)
}

func TestI18n_Lookup(t *testing.T) {
	t.Parallel()

	svc := newCatalog(t)

	msg, ok := svc.Lookup("de", "app", "greeting")
	require.True(t, ok)
	require.Equal(t, "Hallo, {{name}}!", msg)

	_, ok = svc.Lookup("de", "other", "greeting")
	require.False(t, ok)
}

func TestI18n_Tn(t *testing.T) {
	t.Parallel()

	svc := newCatalog(t)

	tests := []struct {
		lang string
		n    int
		want string
	}{
		{"en", 0, "No entries"},
		{"en", 1, "1 entry"},
		{"en", 7, "7 entries"},
		{"en", -1, "-1 entry"},
		{"pl", 1, "1 wpis"},
		{"pl", 3, "3 wpisy"},
		{"pl", 5, "5 wpisów"},
		{"pl", 22, "22 wpisy"},
		{"pl", 0, "0 wpisów"},
		{"de", 2, "2 entries"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, svc.Tn(tt.lang, "app", "entries", tt.n), "%s %d", tt.lang, tt.n)
	}

	require.Equal(t, "missing", svc.Tn("en", "app", "missing", 2))
}

func TestReplace(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a 1 b {{c}}", i18n.Replace("a {{x}} b {{c}}", i18n.M{"x": 1}))
	require.Equal(t, "plain", i18n.Replace("plain", i18n.M{"x": 1}))
	require.Equal(t, "{{x}}", i18n.Replace("{{x}}", nil))
}
