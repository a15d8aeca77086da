package urls_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/urls"
)

func TestPageParameters(t *testing.T) {
	t.Parallel()

	t.Run("set replaces in place", func(t *testing.T) {
		t.Parallel()

		p := urls.NewPageParameters("a", "1", "b", "2", "a", "3")
		p.Set("a", "9")
		require.Equal(t, []string{"a", "b"}, p.Names())
		require.Equal(t, []string{"9"}, p.Values("a"))
	})

	t.Run("typed values", func(t *testing.T) {
		t.Parallel()

		p := urls.NewPageParameters("id", "42", "bad", "x")
		n, err := p.GetInt("id")
		require.NoError(t, err)
		require.Equal(t, 42, n)

		_, err = p.GetInt("bad")
		require.ErrorIs(t, err, urls.ErrInvalidParameter)

		_, err = p.GetInt("missing")
		require.ErrorIs(t, err, urls.ErrParameterNotFound)
	})

	t.Run("indexed", func(t *testing.T) {
		t.Parallel()

		p := &urls.PageParameters{}
		p.SetIndexed(2, "c")
		require.Equal(t, 3, p.IndexedCount())
		v, ok := p.Indexed(2)
		require.True(t, ok)
		require.Equal(t, "c", v)
		_, ok = p.Indexed(5)
		require.False(t, ok)
	})

	t.Run("equality ignores key order", func(t *testing.T) {
		t.Parallel()

		a := urls.NewPageParameters("x", "1", "y", "2")
		b := urls.NewPageParameters("y", "2", "x", "1")
		require.True(t, a.Equal(b))
		require.False(t, a.Equal(urls.NewPageParameters("x", "1")))

		var nilParams *urls.PageParameters
		require.True(t, nilParams.Equal(&urls.PageParameters{}))
	})

	t.Run("clone is independent", func(t *testing.T) {
		t.Parallel()

		a := urls.NewPageParameters("x", "1")
		b := a.Clone()
		b.Set("x", "2")
		v, _ := a.Get("x")
		require.Equal(t, "1", v)
	})

	t.Run("from query skips reserved names", func(t *testing.T) {
		t.Parallel()

		u := urls.Parse("p?wicket:interface=:1::::&q=go&q=rust")
		p := urls.FromQuery(u, "wicket:interface")
		require.Equal(t, []string{"q"}, p.Names())
		require.Equal(t, []string{"go", "rust"}, p.Values("q"))
	})
}
