package pagemap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/markup"
	"github.com/dmitrymomot/loom/pkg/pagemap"
)

func TestPageMap(t *testing.T) {
	t.Parallel()

	t.Run("assigns ids", func(t *testing.T) {
		t.Parallel()

		m := pagemap.New("w1", 5)
		a, b := component.NewPage("A", nil), component.NewPage("B", nil)
		m.Put(a)
		m.Put(b)
		m.Put(a)

		require.Equal(t, 0, a.PageID())
		require.Equal(t, 1, b.PageID())
		require.Equal(t, "w1", a.PageMapName())
		require.Equal(t, 2, m.Len())

		got, err := m.Get(1, -1)
		require.NoError(t, err)
		require.Same(t, b, got)
	})

	t.Run("missing page", func(t *testing.T) {
		t.Parallel()

		_, err := pagemap.New("", 5).Get(7, -1)
		require.ErrorIs(t, err, pagemap.ErrPageNotFound)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		t.Parallel()

		m := pagemap.New("", 2)
		a, b, c := component.NewPage("A", nil), component.NewPage("B", nil), component.NewPage("C", nil)
		m.Put(a)
		m.Put(b)
		_, err := m.Get(a.PageID(), -1)
		require.NoError(t, err)
		m.Put(c)

		_, err = m.Get(b.PageID(), -1)
		require.ErrorIs(t, err, pagemap.ErrPageNotFound)
		_, err = m.Get(a.PageID(), -1)
		require.NoError(t, err)
	})

	t.Run("last of class", func(t *testing.T) {
		t.Parallel()

		m := pagemap.New("", 5)
		first, second := component.NewPage("A", nil), component.NewPage("A", nil)
		m.Put(first)
		m.Put(second)
		m.Put(component.NewPage("B", nil))

		p, ok := m.LastOfClass("A")
		require.True(t, ok)
		require.Same(t, second, p)
		_, ok = m.LastOfClass("C")
		require.False(t, ok)
	})

	t.Run("older version is restored", func(t *testing.T) {
		t.Parallel()

		l := markup.NewLoader(nil)
		l.Register("A", `<span wicket:id="l"></span>`)
		p := component.NewPage("A", nil)
		lbl := component.NewLabel("l", component.Of("v0"))
		p.MustAdd(lbl)
		_, err := p.Render(context.Background(), component.RenderEnv{Loader: l})
		require.NoError(t, err)

		m := pagemap.New("", 5)
		m.Put(p)
		lbl.SetModelObject("v1")
		require.True(t, p.CommitVersion())

		got, err := m.Get(p.PageID(), 0)
		require.NoError(t, err)
		require.Equal(t, 0, got.Version())
		require.Equal(t, "v0", component.String(lbl.Model()))

		_, err = m.Get(p.PageID(), 5)
		require.ErrorIs(t, err, pagemap.ErrVersionUnavailable)
	})
}

func TestMaps(t *testing.T) {
	t.Parallel()

	s := pagemap.NewMaps(3)
	a := s.Get("")
	require.Same(t, a, s.Get(""))

	_, ok := s.Lookup("w2")
	require.False(t, ok)
	s.Get("w2").Put(component.NewPage("A", nil))
	require.ElementsMatch(t, []string{"", "w2"}, s.Names())

	s.Remove("w2")
	_, ok = s.Lookup("w2")
	require.False(t, ok)

	require.NotEqual(t, pagemap.NewName(), pagemap.NewName())
}
