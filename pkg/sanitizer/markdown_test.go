package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/sanitizer"
)

func TestMarkdown(t *testing.T) {
	t.Parallel()

	t.Run("renders emphasis", func(t *testing.T) {
		t.Parallel()

		out, err := sanitizer.Markdown("hello **world**")
		require.NoError(t, err)
		require.Equal(t, "<p>hello <strong>world</strong></p>\n", out)
	})

	t.Run("drops scripts", func(t *testing.T) {
		t.Parallel()

		out, err := sanitizer.Markdown("x <script>alert(1)</script>")
		require.NoError(t, err)
		require.NotContains(t, out, "<script")
	})

	t.Run("links get nofollow", func(t *testing.T) {
		t.Parallel()

		out, err := sanitizer.Markdown("[a](https://example.com)")
		require.NoError(t, err)
		require.Contains(t, out, `rel="nofollow"`)
	})
}
