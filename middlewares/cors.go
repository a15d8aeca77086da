package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultCORSMaxAge is how long browsers may cache a preflight answer.
const DefaultCORSMaxAge = 12 * time.Hour

type corsConfig struct {
	origins     []string
	originFunc  func(origin string) bool
	methods     []string
	headers     []string
	expose      []string
	credentials bool
	maxAge      time.Duration
}

// CORSOption configures the CORS middleware.
type CORSOption func(*corsConfig)

// WithAllowOrigins sets the allowed origins. "*" allows any origin and
// "https://*.example.com" allows every subdomain of example.com.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(c *corsConfig) { c.origins = origins }
}

// WithAllowOriginFunc decides per origin and takes precedence over
// WithAllowOrigins.
func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(c *corsConfig) { c.originFunc = fn }
}

// WithAllowMethods sets the methods announced in preflight answers.
func WithAllowMethods(methods ...string) CORSOption {
	return func(c *corsConfig) { c.methods = methods }
}

// WithAllowHeaders sets the request headers announced in preflight answers.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(c *corsConfig) { c.headers = headers }
}

// WithExposeHeaders sets the response headers scripts may read.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(c *corsConfig) { c.expose = headers }
}

// WithAllowCredentials lets browsers send cookies. The request origin is
// echoed back since "*" is not valid with credentials.
func WithAllowCredentials() CORSOption {
	return func(c *corsConfig) { c.credentials = true }
}

// WithMaxAge sets the preflight cache duration. Zero omits the header.
func WithMaxAge(d time.Duration) CORSOption {
	return func(c *corsConfig) { c.maxAge = d }
}

// CORS answers preflight requests and decorates responses for allowed
// origins. Shared resources under /resources/ are the usual target.
// Requests without an Origin header pass through untouched.
func CORS(opts ...CORSOption) func(http.Handler) http.Handler {
	c := &corsConfig{
		origins: []string{"*"},
		methods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		headers: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		maxAge:  DefaultCORSMaxAge,
	}
	for _, opt := range opts {
		opt(c)
	}

	allowed := c.matcher()
	anyOrigin := c.originFunc == nil && slices.Contains(c.origins, "*")
	methods := strings.Join(c.methods, ", ")
	headers := strings.Join(c.headers, ", ")
	expose := strings.Join(c.expose, ", ")
	maxAge := strconv.Itoa(int(c.maxAge / time.Second))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !allowed(origin) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			if anyOrigin && !c.credentials {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			if c.credentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if expose != "" {
				h.Set("Access-Control-Expose-Headers", expose)
			}

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if c.maxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func (c *corsConfig) matcher() func(string) bool {
	if c.originFunc != nil {
		return c.originFunc
	}
	if slices.Contains(c.origins, "*") {
		return func(string) bool { return true }
	}

	exact := make(map[string]struct{}, len(c.origins))
	var wildcards [][2]string
	for _, o := range c.origins {
		if scheme, host, ok := strings.Cut(o, "://*."); ok {
			wildcards = append(wildcards, [2]string{scheme + "://", "." + host})
			continue
		}
		exact[o] = struct{}{}
	}

	return func(origin string) bool {
		if _, ok := exact[origin]; ok {
			return true
		}
		for _, w := range wildcards {
			if strings.HasPrefix(origin, w[0]) && strings.HasSuffix(origin, w[1]) &&
				len(origin) > len(w[0])+len(w[1]) {
				return true
			}
		}
		return false
	}
}
