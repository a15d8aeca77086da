package middlewares

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	"github.com/dmitrymomot/loom/internal"
	"github.com/dmitrymomot/loom/pkg/i18n"
)

type translatorKey struct{}

// LocaleConfig configures the Locale middleware.
type LocaleConfig struct {
	FormatMap    map[string]*i18n.LocaleFormat
	Namespace    string
	Extractor    internal.Extractor
	extractorSet bool
}

// LocaleOption configures LocaleConfig.
type LocaleOption func(*LocaleConfig)

// WithLocaleNamespace sets the default namespace for the context translator.
func WithLocaleNamespace(ns string) LocaleOption {
	return func(cfg *LocaleConfig) {
		cfg.Namespace = ns
	}
}

// WithLocaleExtractor sets a custom language extractor chain.
func WithLocaleExtractor(ext internal.Extractor) LocaleOption {
	return func(cfg *LocaleConfig) {
		cfg.Extractor = ext
		cfg.extractorSet = true
	}
}

// WithLocaleFormatMap overrides the number and date format of some
// languages. Others get the CLDR format of the negotiated language.
func WithLocaleFormatMap(m map[string]*i18n.LocaleFormat) LocaleOption {
	return func(cfg *LocaleConfig) {
		cfg.FormatMap = m
	}
}

// FromAcceptLanguage returns an ExtractorSource that parses the Accept-Language
// header and matches against the available languages.
func FromAcceptLanguage(available []string) internal.ExtractorSource {
	return func(r *http.Request) (string, bool) {
		header := r.Header.Get("Accept-Language")
		if header == "" {
			return "", false
		}
		lang := i18n.ParseAcceptLanguage(header, available)
		return lang, lang != ""
	}
}

// Locale returns middleware that negotiates the request language and stores
// it in the request context, where the request cycle picks it up as the
// locale of pages without a session locale. A Translator for the language is
// stored alongside.
func Locale(svc *i18n.I18n, opts ...LocaleOption) func(http.Handler) http.Handler {
	cfg := &LocaleConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Default extractor: query → cookie → accept-language
	if !cfg.extractorSet {
		cfg.Extractor = internal.NewExtractor(
			internal.FromQuery("lang"),
			internal.FromCookie("lang"),
			FromAcceptLanguage(svc.Languages()),
		)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang, ok := cfg.Extractor.Extract(r)
			tag, err := language.Parse(lang)
			if !ok || err != nil {
				lang = svc.DefaultLanguage()
				tag, err = language.Parse(lang)
				if err != nil {
					tag = language.English
				}
			}

			tr := i18n.NewTranslator(svc, lang, cfg.Namespace, cfg.FormatMap[lang])

			ctx := internal.WithLocale(r.Context(), tag)
			ctx = context.WithValue(ctx, translatorKey{}, tr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTranslator extracts the Translator from the context.
// Returns nil if the Locale middleware is not used.
func GetTranslator(ctx context.Context) *i18n.Translator {
	if v, ok := ctx.Value(translatorKey{}).(*i18n.Translator); ok {
		return v
	}
	return nil
}

// GetLanguage returns the negotiated language, or "" without the Locale
// middleware.
func GetLanguage(ctx context.Context) string {
	if tag, ok := internal.LocaleFromContext(ctx); ok {
		return tag.String()
	}
	return ""
}
