package coding_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/coding"
	"github.com/dmitrymomot/loom/pkg/urls"
)

func TestStrategy_Decode(t *testing.T) {
	t.Parallel()

	s := coding.NewStrategy()

	t.Run("bookmarkable page", func(t *testing.T) {
		t.Parallel()

		p, err := s.Decode(urls.Parse("/?wicket:bookmarkablePage=win:Home&id=3&tag=a&tag=b"))
		require.NoError(t, err)
		require.Equal(t, "Home", p.BookmarkablePage)
		require.Equal(t, "win", p.PageMapName)
		require.Equal(t, []string{"id", "tag"}, p.Params.Names())
		require.Equal(t, []string{"a", "b"}, p.Params.Values("tag"))
		require.False(t, p.HasInterface())
	})

	t.Run("listener interface", func(t *testing.T) {
		t.Parallel()

		p, err := s.Decode(urls.Parse("/?wicket:interface=:3:form:name:2:IFormSubmitListener:1:0"))
		require.NoError(t, err)
		require.Equal(t, coding.DefaultPageMap, p.PageMapName)
		require.Equal(t, "3:form:name", p.ComponentPath)
		id, ok := p.PageID()
		require.True(t, ok)
		require.Equal(t, 3, id)
		require.Equal(t, "form:name", p.RelativePath())
		require.Equal(t, 2, p.Version)
		require.Equal(t, "IFormSubmitListener", p.Interface)
		require.Equal(t, 1, p.BehaviorID)
		require.Equal(t, 0, p.URLDepth)
		require.True(t, p.HasInterface())
	})

	t.Run("page render", func(t *testing.T) {
		t.Parallel()

		p, err := s.Decode(urls.Parse("/?wicket:interface=:3::::"))
		require.NoError(t, err)
		id, ok := p.PageID()
		require.True(t, ok)
		require.Equal(t, 3, id)
		require.Equal(t, 0, p.Version)
		require.Equal(t, -1, p.BehaviorID)
		require.Equal(t, -1, p.URLDepth)
		require.Equal(t, coding.RedirectListener, p.Interface)
		require.False(t, p.HasInterface())
	})

	t.Run("bookmarkable page has no version", func(t *testing.T) {
		t.Parallel()

		p, err := s.Decode(urls.Parse("/?wicket:bookmarkablePage=:Home"))
		require.NoError(t, err)
		require.Equal(t, -1, p.Version)
	})

	t.Run("resource", func(t *testing.T) {
		t.Parallel()

		p, err := s.Decode(urls.Parse("/resources/app/site.css?v=2"))
		require.NoError(t, err)
		require.Equal(t, "app/site.css", p.ResourceKey)
		v, _ := p.Params.Get("v")
		require.Equal(t, "2", v)
	})

	t.Run("home", func(t *testing.T) {
		t.Parallel()

		p, err := s.Decode(urls.Parse("/"))
		require.NoError(t, err)
		require.True(t, p.IsEmpty())

		p, err = s.Decode(urls.Parse("/?x=1"))
		require.NoError(t, err)
		require.False(t, p.IsEmpty())
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()

		_, err := s.Decode(urls.Parse("/?wicket:interface=:3:x"))
		require.ErrorIs(t, err, coding.ErrMalformedInterface)

		_, err = s.Decode(urls.Parse("/?wicket:interface=:3:v1:::"))
		require.ErrorIs(t, err, coding.ErrMalformedInterface)

		_, err = s.Decode(urls.Parse("/?wicket:bookmarkablePage=Home"))
		require.ErrorIs(t, err, coding.ErrMalformedBookmarkable)
	})
}

func TestStrategy_Mounts(t *testing.T) {
	t.Parallel()

	s := coding.NewStrategy()
	require.NoError(t, s.Mount("/products/${id}/#{tab}", "Product"))
	require.NoError(t, s.Mount("/products/new", "NewProduct"))
	require.NoError(t, s.Mount("/docs", "Docs"))

	t.Run("more literal segments win", func(t *testing.T) {
		t.Parallel()

		p, err := s.Decode(urls.Parse("/products/new"))
		require.NoError(t, err)
		require.Equal(t, "NewProduct", p.BookmarkablePage)
	})

	t.Run("placeholders", func(t *testing.T) {
		t.Parallel()

		p, err := s.Decode(urls.Parse("/products/7?sort=asc"))
		require.NoError(t, err)
		require.Equal(t, "Product", p.BookmarkablePage)
		id, _ := p.Params.Get("id")
		require.Equal(t, "7", id)
		_, ok := p.Params.Get("tab")
		require.False(t, ok)
		sort, _ := p.Params.Get("sort")
		require.Equal(t, "asc", sort)

		p, err = s.Decode(urls.Parse("/products/7/reviews"))
		require.NoError(t, err)
		tab, _ := p.Params.Get("tab")
		require.Equal(t, "reviews", tab)
	})

	t.Run("required placeholder missing", func(t *testing.T) {
		t.Parallel()

		p, err := s.Decode(urls.Parse("/products"))
		require.NoError(t, err)
		require.Empty(t, p.BookmarkablePage)
		require.Equal(t, "products", p.Path)
	})

	t.Run("extra segments are indexed", func(t *testing.T) {
		t.Parallel()

		p, err := s.Decode(urls.Parse("/docs/guide/intro"))
		require.NoError(t, err)
		require.Equal(t, "Docs", p.BookmarkablePage)
		v, _ := p.Params.Indexed(1)
		require.Equal(t, "intro", v)
	})

	t.Run("listener on mounted path", func(t *testing.T) {
		t.Parallel()

		p, err := s.Decode(urls.Parse("/products/7?wicket:interface=:0:buy::ILinkListener::"))
		require.NoError(t, err)
		require.Equal(t, "Product", p.BookmarkablePage)
		require.Equal(t, "0:buy", p.ComponentPath)
		require.Equal(t, "ILinkListener", p.Interface)
		require.Equal(t, []string{"id"}, p.Params.Names())
	})

	t.Run("encode uses the template", func(t *testing.T) {
		t.Parallel()

		u := s.EncodeBookmarkable("", "Product", urls.NewPageParameters("id", "7", "sort", "asc"))
		require.Equal(t, "/products/7?sort=asc", u.String())

		u = s.EncodeBookmarkable("", "Product", urls.NewPageParameters("id", "7", "tab", "reviews"))
		require.Equal(t, "/products/7/reviews", u.String())
	})

	t.Run("encode falls back without required value", func(t *testing.T) {
		t.Parallel()

		u := s.EncodeBookmarkable("", "Product", nil)
		require.Equal(t, "/?wicket:bookmarkablePage=:Product", u.String())
	})

	t.Run("invalid mounts", func(t *testing.T) {
		t.Parallel()

		require.ErrorIs(t, s.Mount("/docs", "Other"), coding.ErrMountExists)
		require.ErrorIs(t, s.Mount("/", "Home"), coding.ErrInvalidMount)
		require.ErrorIs(t, s.Mount("/${id}", "X"), coding.ErrInvalidMount)
		require.ErrorIs(t, s.Mount("/a/#{x}/${y}", "X"), coding.ErrInvalidMount)
	})
}

func TestStrategy_RoundTrip(t *testing.T) {
	t.Parallel()

	s := coding.NewStrategy()
	require.NoError(t, s.Mount("/items/${id}", "Item"))

	tests := []struct {
		name string
		url  urls.URL
	}{
		{"listener", s.EncodeListener(coding.ListenerRef{PageMap: "w1", PageID: 4, ComponentPath: "list:0:link", Version: 3, Interface: "ILinkListener", BehaviorID: -1, URLDepth: 2})},
		{"behavior", s.EncodeListener(coding.ListenerRef{PageID: 1, ComponentPath: "count", Interface: "IBehaviorListener", BehaviorID: 0, URLDepth: -1})},
		{"page", s.EncodePage("", 9, 0)},
		{"bookmarkable", s.EncodeBookmarkable("", "Home", urls.NewPageParameters("q", "a b&c"))},
		{"mounted listener", s.EncodeBookmarkableListener("Item", urls.NewPageParameters("id", "5"), coding.ListenerRef{PageID: 0, ComponentPath: "form", Interface: "IFormSubmitListener", BehaviorID: -1, URLDepth: -1})},
		{"resource", s.EncodeResource("app/site.css")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			first, err := s.Decode(tt.url)
			require.NoError(t, err)
			again, err := s.Decode(urls.Parse(tt.url.String()))
			require.NoError(t, err)
			require.Equal(t, first.ComponentPath, again.ComponentPath)
			require.Equal(t, first.Interface, again.Interface)
			require.Equal(t, first.BookmarkablePage, again.BookmarkablePage)
			require.Equal(t, first.ResourceKey, again.ResourceKey)
			require.True(t, first.Params.Equal(again.Params))
		})
	}

	t.Run("listener fields survive", func(t *testing.T) {
		t.Parallel()

		u := s.EncodeListener(coding.ListenerRef{PageMap: "w1", PageID: 4, ComponentPath: "list:0:link", Version: 3, Interface: "ILinkListener", BehaviorID: -1, URLDepth: 2})
		require.Equal(t, "/?wicket:interface=w1:4:list:0:link:3:ILinkListener::2", u.String())

		p, err := s.Decode(urls.Parse(u.String()))
		require.NoError(t, err)
		require.Equal(t, "w1", p.PageMapName)
		require.Equal(t, "4:list:0:link", p.ComponentPath)
		require.Equal(t, 3, p.Version)
		require.Equal(t, 2, p.URLDepth)
	})
}
