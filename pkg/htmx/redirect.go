package htmx

import "net/http"

// Redirect sends the client to url: HX-Redirect with 200 for htmx requests,
// 302 otherwise.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	RedirectWithStatus(w, r, url, http.StatusFound)
}

// RedirectWithStatus is Redirect with the status used for plain requests.
func RedirectWithStatus(w http.ResponseWriter, r *http.Request, url string, status int) {
	if IsHTMX(r) {
		w.Header().Set(HeaderHXRedirect, url)
		// htmx only reads the header on a 2xx response
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, status)
}

// Refresh asks htmx to reload the whole page.
func Refresh(w http.ResponseWriter) {
	w.Header().Set(HeaderHXRefresh, "true")
	w.WriteHeader(http.StatusOK)
}
