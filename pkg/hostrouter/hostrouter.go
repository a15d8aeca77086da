package hostrouter

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// Routes maps host patterns to handlers: "shop.example.com" or
// "*.example.com".
type Routes map[string]http.Handler

// Router dispatches on the Host header. Exact patterns win over wildcards;
// among wildcards the longest base domain wins.
type Router struct {
	exact    map[string]http.Handler
	wildcard map[string]http.Handler
	fallback http.Handler
}

// New creates a router. Requests matching no pattern go to fallback, or get
// a 404 when fallback is nil.
func New(routes Routes, fallback http.Handler) *Router {
	if fallback == nil {
		fallback = http.NotFoundHandler()
	}
	r := &Router{
		exact:    make(map[string]http.Handler),
		wildcard: make(map[string]http.Handler),
		fallback: fallback,
	}
	for pattern, h := range routes {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		switch {
		case pattern == "" || h == nil:
		case strings.HasPrefix(pattern, "*."):
			r.wildcard[pattern[2:]] = h
		default:
			r.exact[pattern] = h
		}
	}
	return r
}

// ServeHTTP implements http.Handler. A wildcard match stores the subdomain
// in the request context.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	host := Host(req)
	if h, ok := r.exact[host]; ok {
		h.ServeHTTP(w, req)
		return
	}

	for base := host; ; {
		_, rest, ok := strings.Cut(base, ".")
		if !ok {
			break
		}
		if h, ok := r.wildcard[rest]; ok {
			sub := strings.TrimSuffix(host, "."+rest)
			h.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), subdomainKey{}, sub)))
			return
		}
		base = rest
	}

	r.fallback.ServeHTTP(w, req)
}

type subdomainKey struct{}

// Subdomain returns the part of the host a wildcard pattern matched, "shop"
// for shop.example.com under "*.example.com".
func Subdomain(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subdomainKey{}).(string)
	return s, ok
}

// Host returns the lower-cased request host without its port. IPv6
// addresses keep their brackets.
func Host(r *http.Request) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
		if strings.Contains(h, ":") {
			host = "[" + h + "]"
		}
	}
	return strings.ToLower(host)
}
