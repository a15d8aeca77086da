package health

import (
	"encoding/json"
	"net/http"
	"strings"
)

// LivenessHandler answers OK while the process runs.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, http.StatusOK, &Response{Status: StatusHealthy})
	}
}

// ReadinessHandler runs checks on every request and answers 503 when one
// fails.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	cfg := newConfig(opts...)
	return func(w http.ResponseWriter, r *http.Request) {
		resp := run(r.Context(), checks, cfg)
		status := http.StatusOK
		if resp.Status != StatusHealthy {
			status = http.StatusServiceUnavailable
		}
		write(w, r, status, resp)
	}
}

// write answers JSON for ?format=json or an Accept header asking for it,
// plain text otherwise.
func write(w http.ResponseWriter, r *http.Request, status int, resp *Response) {
	w.Header().Set("Cache-Control", "no-store")
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(http.StatusText(status)))
}
