package htmx

import "net/http"

// IsHTMX reports whether r was sent by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderHXRequest) == "true"
}

// IsBoosted reports whether r comes from an hx-boost link or form.
func IsBoosted(r *http.Request) bool {
	return r.Header.Get(HeaderHXBoosted) == "true"
}

// CurrentURL returns the URL the browser shows, which htmx sends along with
// every request.
func CurrentURL(r *http.Request) (string, bool) {
	v := r.Header.Get(HeaderHXCurrentURL)
	return v, v != "" && IsHTMX(r)
}
