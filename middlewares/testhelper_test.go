package middlewares_test

import (
	"net/http"
	"net/http/httptest"
)

// serve runs req through mw in front of h and returns the recorded response.
func serve(mw func(http.Handler) http.Handler, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mw(h).ServeHTTP(rec, req)
	return rec
}

// ok answers 200 with no body.
func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
