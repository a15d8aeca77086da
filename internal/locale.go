package internal

import (
	"context"

	"golang.org/x/text/language"
)

type localeKey struct{}

// WithLocale returns a context carrying the locale negotiated for the
// request, usually by the Locale middleware.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeKey{}, tag)
}

// LocaleFromContext returns the locale stored by WithLocale.
func LocaleFromContext(ctx context.Context) (language.Tag, bool) {
	tag, ok := ctx.Value(localeKey{}).(language.Tag)
	return tag, ok
}
