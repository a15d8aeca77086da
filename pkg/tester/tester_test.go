package tester_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/tester"
)

func testHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
		http.Redirect(w, r, "/pages/home", http.StatusFound)
	})
	mux.HandleFunc("/pages/home", func(w http.ResponseWriter, r *http.Request) {
		c, _ := r.Cookie("sid")
		sid := ""
		if c != nil {
			sid = c.Value
		}
		fmt.Fprintf(w, `<html><body>
<p id="sid">%s</p>
<a class="next" href="./next?x=1">next</a>
<form id="f" method="post" action="../submit">
  <input name="name" value="default">
  <input type="checkbox" name="opt" value="on">
  <textarea name="note">hi</textarea>
  <input type="submit" name="go" value="Go">
</form>
</body></html>`, sid)
	})
	mux.HandleFunc("/pages/next", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<p id="x">%s</p>`, r.URL.Query().Get("x"))
	})
	mux.HandleFunc("/submit", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		fmt.Fprintf(w, `<p id="name">%s</p><p id="note">%s</p><p id="opt">%s</p><p id="go">%s</p>`,
			r.PostForm.Get("name"), r.PostForm.Get("note"), r.PostForm.Get("opt"), r.PostForm.Get("go"))
	})
	mux.HandleFunc("/htmx", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<p id="hx">%s|%s</p>`, r.Header.Get("HX-Request"), r.Header.Get("HX-Current-URL"))
	})
	return mux
}

func TestTester(t *testing.T) {
	t.Parallel()

	t.Run("follows redirects and keeps cookies", func(t *testing.T) {
		t.Parallel()

		tt := tester.New(t, testHandler())
		res := tt.Get("/start")
		require.Equal(t, http.StatusOK, res.Status)
		require.Equal(t, []string{"/pages/home"}, res.Redirects)
		require.Equal(t, "/pages/home", res.URL.Path)
		require.Equal(t, "abc", res.Text("#sid"))
	})

	t.Run("no follow stops at the redirect", func(t *testing.T) {
		t.Parallel()

		tt := tester.New(t, testHandler())
		res := tt.NoFollow().Get("/start")
		require.Equal(t, http.StatusFound, res.Status)
		require.Equal(t, "/pages/home", res.Header.Get("Location"))
		require.Empty(t, res.Redirects)

		home := tt.Get("/pages/home")
		require.Equal(t, "abc", home.Text("#sid"))
	})

	t.Run("click resolves relative links", func(t *testing.T) {
		t.Parallel()

		tt := tester.New(t, testHandler())
		home := tt.Get("/pages/home")
		require.True(t, home.Has("a.next"))
		require.Equal(t, "./next?x=1", home.Href("a.next"))

		next := tt.Click(home, "a.next")
		require.Equal(t, "1", next.Text("#x"))
	})

	t.Run("submit sends form values", func(t *testing.T) {
		t.Parallel()

		tt := tester.New(t, testHandler())
		home := tt.Get("/pages/home")

		res := tt.Submit(home, "form#f", url.Values{"name": {"ada"}})
		require.Equal(t, "ada", res.Text("#name"))
		require.Equal(t, "hi", res.Text("#note"))
		require.Empty(t, res.Text("#opt"))
		require.Empty(t, res.Text("#go"))
	})

	t.Run("htmx headers", func(t *testing.T) {
		t.Parallel()

		tt := tester.New(t, testHandler())
		home := tt.Get("/pages/home")
		res := tt.HTMX(home, "/htmx")
		require.Equal(t, "true|"+home.URL.String(), res.Text("#hx"))
	})
}
