package component_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/component"
)

func TestPage_Versioning(t *testing.T) {
	t.Parallel()

	newRendered := func(t *testing.T, opts ...component.PageOption) (*component.Page, *component.Label) {
		t.Helper()
		p := component.NewPage("Home", nil, opts...)
		l := component.NewLabel("l", component.Of("v"))
		p.MustAdd(l)
		render(t, p, env(loader("Home", `<span wicket:id="l"></span>`)))
		return p, l
	}

	t.Run("changes before the first render are not versioned", func(t *testing.T) {
		t.Parallel()

		p := component.NewPage("Home", nil)
		p.MustAdd(component.NewLabel("l", nil))
		require.False(t, p.CommitVersion())
		require.Zero(t, p.Version())
	})

	t.Run("listener call creates a version", func(t *testing.T) {
		t.Parallel()

		p, l := newRendered(t)
		p.BeforeCallComponent(l, component.LinkListenerName)
		l.SetVisible(false)
		l.SetModelObject("changed")
		require.True(t, p.InCall())
		p.AfterCallComponent(l, component.LinkListenerName)

		require.False(t, p.InCall())
		require.Equal(t, 1, p.Version())

		require.NoError(t, p.RollbackTo(0))
		require.Zero(t, p.Version())
		require.True(t, l.IsVisible())
		require.Equal(t, "v", component.String(l.Model()))
	})

	t.Run("rollback removes added children", func(t *testing.T) {
		t.Parallel()

		p, _ := newRendered(t)
		p.MustAdd(component.NewLabel("extra", nil))
		require.True(t, p.CommitVersion())
		require.True(t, p.Remove("l"))
		require.True(t, p.CommitVersion())
		require.Equal(t, 2, p.Version())

		require.NoError(t, p.RollbackTo(0))
		require.Nil(t, p.Get("extra"))
		require.NotNil(t, p.Get("l"))
	})

	t.Run("changes during render are not recorded", func(t *testing.T) {
		t.Parallel()

		p, l := newRendered(t)
		p.OnBeforeRenderFunc(func() error {
			l.SetModelObject("during render")
			return nil
		})
		render(t, p, env(loader("Home", `<span wicket:id="l"></span>`)))
		require.Zero(t, p.Version())
	})

	t.Run("history is bounded", func(t *testing.T) {
		t.Parallel()

		p, l := newRendered(t, component.MaxVersions(2))
		for i := range 3 {
			l.SetVisible(i%2 != 0)
			require.True(t, p.CommitVersion())
		}
		require.Equal(t, 3, p.Version())
		require.Equal(t, 1, p.OldestVersion())
		require.ErrorIs(t, p.RollbackTo(0), component.ErrVersionUnavailable)
		require.ErrorIs(t, p.RollbackTo(4), component.ErrVersionUnavailable)
		require.NoError(t, p.RollbackTo(1))
	})

	t.Run("unversioned page", func(t *testing.T) {
		t.Parallel()

		p, l := newRendered(t, component.Unversioned())
		l.SetVisible(false)
		require.False(t, p.CommitVersion())
		require.Zero(t, p.Version())
	})
}
