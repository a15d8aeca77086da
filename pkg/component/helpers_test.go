package component_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/markup"
	"github.com/dmitrymomot/loom/pkg/urls"
)

type fakeCycle struct {
	values   url.Values
	redirect string
}

func newCycle(kv ...string) *fakeCycle {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return &fakeCycle{values: v}
}

func (c *fakeCycle) Context() context.Context     { return context.Background() }
func (c *fakeCycle) Request() *http.Request       { return nil }
func (c *fakeCycle) Logger() *slog.Logger         { return slog.New(slog.DiscardHandler) }
func (c *fakeCycle) Locale() language.Tag         { return language.Und }
func (c *fakeCycle) FormValue(name string) string { return c.values.Get(name) }
func (c *fakeCycle) IsHTMX() bool                 { return false }

func (c *fakeCycle) SetResponsePage(class string, _ *urls.PageParameters) { c.redirect = class }
func (c *fakeCycle) SetResponsePageInstance(p *component.Page)            { c.redirect = p.Class() }

type fakeURLs struct{}

func (fakeURLs) ListenerURL(c component.Component, listener string) string {
	return "listener:" + c.Path() + ":" + listener
}

func (fakeURLs) BehaviorURL(c component.Component, id int) string {
	return "behavior:" + c.Path() + ":" + strconv.Itoa(id)
}

func (fakeURLs) BookmarkableURL(class string, params *urls.PageParameters) string {
	if params.IsEmpty() {
		return "page:" + class
	}
	id, _ := params.Get("id")
	return "page:" + class + "?id=" + id
}

func (fakeURLs) ResourceURL(key string) string { return "/resources/" + key }

type mapLocalizer map[string]string

func (m mapLocalizer) Localize(key string) (string, bool) {
	s, ok := m[key]
	return s, ok
}

// loader registers inline markup given as class, markup pairs.
func loader(kv ...string) *markup.Loader {
	l := markup.NewLoader(nil)
	for i := 0; i+1 < len(kv); i += 2 {
		l.Register(kv[i], kv[i+1])
	}
	return l
}

func env(l *markup.Loader) component.RenderEnv {
	return component.RenderEnv{Loader: l, URLs: fakeURLs{}, StripWicketTags: true}
}

func render(t *testing.T, p *component.Page, e component.RenderEnv) string {
	t.Helper()
	out, err := p.Render(context.Background(), e)
	require.NoError(t, err)
	return out
}
