// Package htmx detects htmx requests and answers them with htmx redirects.
//
// The request cycle uses it to tell ajax requests from page loads: an htmx
// request carries the browser URL in HX-Current-URL, so relative URLs are
// rendered against that instead of the request URL, and redirects become an
// HX-Redirect header the client follows itself.
//
//	if htmx.IsHTMX(r) {
//		htmx.Redirect(w, r, "/?wicket:interface=:0::::")
//	}
package htmx
