package urls_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/urls"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("absolute path with query", func(t *testing.T) {
		t.Parallel()

		u := urls.Parse("/shop/items?sort=asc&page=2")
		require.Equal(t, []string{"", "shop", "items"}, u.Segments())
		require.True(t, u.IsAbsolute())
		v, ok := u.QueryValue("page")
		require.True(t, ok)
		require.Equal(t, "2", v)
	})

	t.Run("trailing slash keeps empty segment", func(t *testing.T) {
		t.Parallel()

		u := urls.Parse("a/b/")
		require.Equal(t, []string{"a", "b", ""}, u.Segments())
		require.Equal(t, "a/b/", u.String())
	})

	t.Run("parameter without value", func(t *testing.T) {
		t.Parallel()

		u := urls.Parse("page?3&x=")
		require.Equal(t, []urls.QueryParameter{{Name: "3"}, {Name: "x"}}, u.Query())
		require.Equal(t, "page?3&x", u.String())
	})

	t.Run("full url", func(t *testing.T) {
		t.Parallel()

		u := urls.Parse("https://example.com:8443/a?b=c")
		require.Equal(t, "https", u.Protocol())
		require.Equal(t, "example.com", u.Host())
		require.Equal(t, 8443, u.Port())
		require.Equal(t, []string{"", "a"}, u.Segments())
		require.Equal(t, "https://example.com:8443/a?b=c", u.String())
	})

	t.Run("decodes escapes", func(t *testing.T) {
		t.Parallel()

		u := urls.Parse("a%2Fb/c%20d?q=x+y&r=%3D")
		require.Equal(t, []string{"a/b", "c d"}, u.Segments())
		v, _ := u.QueryValue("q")
		require.Equal(t, "x y", v)
		v, _ = u.QueryValue("r")
		require.Equal(t, "=", v)
	})

	t.Run("keeps colons readable in query", func(t *testing.T) {
		t.Parallel()

		u := urls.New(nil, urls.QueryParameter{Name: "wicket:interface", Value: ":1:form::IFormSubmitListener::"})
		require.Equal(t, "?wicket:interface=:1:form::IFormSubmitListener::", u.String())
	})

	t.Run("empty string", func(t *testing.T) {
		t.Parallel()

		u := urls.Parse("")
		require.Empty(t, u.Segments())
		require.Empty(t, u.Query())
		require.Empty(t, u.String())
	})
}

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"/",
		"//",
		"a",
		"/a/b/c",
		"a/b/",
		"../x/./y",
		"?a",
		"?a=1&a=2&b",
		"a%3A//b",
		"/a://b",
		"x?=5",
		"/a?=",
		"/a?=&b=1",
		"http://h:-1/a",
		"http://h:0/a",
		"%zz/ok",
		"/p?v=%25zz",
		"page?q=a+b%2Bc&&z=%26",
		"http://host",
		"http://host:abc/x",
		"http:///a",
		"https://h:80/p/?x=y#frag",
		"wicket/page?wicket:interface=:0:form:1:IFormSubmitListener::",
		"mount/%E2%9C%93/x?%E2%9C%93=%E2%9C%93",
	}

	for _, s := range inputs {
		t.Run(s, func(t *testing.T) {
			t.Parallel()

			first := urls.Parse(s)
			second := urls.Parse(first.String())
			require.True(t, first.Equal(second), "%q -> %q", s, first.String())
		})
	}
}

func TestURL_Immutability(t *testing.T) {
	t.Parallel()

	u := urls.Parse("a/b?x=1")
	v := u.WithQuery("x", "2").WithSegments("c")

	require.Equal(t, "a/b?x=1", u.String())
	require.Equal(t, "c?x=2", v.String())

	segs := u.Segments()
	segs[0] = "changed"
	require.Equal(t, []string{"a", "b"}, u.Segments())
}

func TestURL_QueryMutators(t *testing.T) {
	t.Parallel()

	u := urls.Parse("p?a=1&b=2&a=3")

	require.Equal(t, "p?b=2", u.WithoutQuery("a").String())
	require.Equal(t, "p?b=2&a=9", u.WithQuery("a", "9").String())
	require.Equal(t, "p?a=1&b=2&a=3&c=4", u.AddQuery("c", "4").String())
	require.Equal(t, "p", u.WithoutQueryString().String())
	require.True(t, u.HasQuery("b"))
	require.False(t, u.HasQuery("z"))
}

func TestURL_ResolveRelative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base string
		rel  string
		want string
	}{
		{"a/b/c", "d", "a/b/d"},
		{"a/b/c", "../d", "a/d"},
		{"a/b/c", "./", "a/b/"},
		{"a/b/c", "..", "a/"},
		{"a/b/c", "/x/y", "/x/y"},
		{"/a", "../../x", "/x"},
		{"a/b?q=1", "c?r=2", "a/c?r=2"},
	}

	for _, tt := range tests {
		t.Run(tt.base+"+"+tt.rel, func(t *testing.T) {
			t.Parallel()

			got := urls.Parse(tt.base).ResolveRelative(urls.Parse(tt.rel))
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestRenderer(t *testing.T) {
	t.Parallel()

	t.Run("relative to nested base", func(t *testing.T) {
		t.Parallel()

		r := urls.NewRenderer(urls.Parse("shop/items"))
		require.Equal(t, "../wicket/page?x=1", r.RenderRelative(urls.Parse("wicket/page?x=1")))
	})

	t.Run("sibling", func(t *testing.T) {
		t.Parallel()

		r := urls.NewRenderer(urls.Parse("shop/items"))
		require.Equal(t, "./cart", r.RenderRelative(urls.Parse("shop/cart")))
	})

	t.Run("root base", func(t *testing.T) {
		t.Parallel()

		r := urls.NewRenderer(urls.Parse(""))
		require.Equal(t, "./?wicket:interface=:1::::", r.RenderRelative(urls.Parse("?wicket:interface=:1::::")))
	})

	t.Run("up to root", func(t *testing.T) {
		t.Parallel()

		r := urls.NewRenderer(urls.Parse("a/b/c"))
		require.Equal(t, "../../", r.RenderRelative(urls.Parse("")))
	})

	t.Run("resolving the rendered link yields the target", func(t *testing.T) {
		t.Parallel()

		base := urls.Parse("/a/b/c")
		target := urls.Parse("/a/x/y?z=1")
		rel := urls.NewRenderer(base).RenderRelative(target)
		require.Equal(t, target.String(), base.ResolveRelative(urls.Parse(rel)).String())
	})

	t.Run("absolute", func(t *testing.T) {
		t.Parallel()

		r := urls.NewRenderer(urls.Parse("a/b"))
		require.Equal(t, "/shop/cart?x=1", r.RenderAbsolute(urls.Parse("shop/cart?x=1")))
		require.Equal(t, "/", r.RenderAbsolute(urls.Parse("")))
		require.Equal(t, "https://h/x", r.RenderAbsolute(urls.Parse("https://h/x")))
	})
}

func TestRenderer_SetBase(t *testing.T) {
	t.Parallel()

	r := urls.NewRenderer(urls.Parse("a"))
	old := r.SetBase(urls.Parse("b/c"))
	require.Equal(t, "a", old.String())
	require.Equal(t, "b/c", r.Base.String())
}
