// Package tester drives a loom application in tests.
//
// A Tester runs the handler behind an httptest server, keeps cookies between
// requests and follows redirects the way a browser does. Responses are parsed
// with goquery so links and forms can be found by CSS selector and followed.
//
//	tt := tester.New(t, app)
//	home := tt.Get("/")
//	require.Equal(t, "Hello", home.Text("#greeting"))
//
//	after := tt.Click(home, "a.increment")
//	require.Equal(t, http.StatusOK, after.Status)
//	require.Len(t, after.Redirects, 1)
//
// Forms are submitted with the values of their inputs, overridden by the
// given values:
//
//	res := tt.Submit(page, "form#signup", url.Values{"email": {"a@b.c"}})
//
// htmx requests carry the HX-Request and HX-Current-URL headers:
//
//	res := tt.HTMX(page, page.Href("button[hx-get]"))
package tester
