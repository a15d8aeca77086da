package middlewares

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/loom/internal"
	"github.com/dmitrymomot/loom/pkg/id"
	"github.com/dmitrymomot/loom/pkg/logger"
)

// maxRequestIDLength bounds IDs accepted from clients.
const maxRequestIDLength = 128

type requestIDKey struct{}

type requestIDConfig struct {
	headers  []string
	generate func() string
	echoedAs string
}

// RequestIDOption configures the RequestID middleware.
type RequestIDOption func(*requestIDConfig)

// WithRequestIDHeaders sets the request headers searched, in order, for an
// upstream ID.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(c *requestIDConfig) { c.headers = headers }
}

// WithRequestIDGenerator replaces the ULID generator.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(c *requestIDConfig) { c.generate = gen }
}

// WithRequestIDResponseHeader sets the response header the ID is echoed in.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(c *requestIDConfig) { c.echoedAs = header }
}

// RequestID tags every request with an ID kept in the context and echoed in
// a response header. An upstream ID is kept when it is printable ASCII and
// at most 128 bytes long; otherwise a fresh one is generated.
func RequestID(opts ...RequestIDOption) func(http.Handler) http.Handler {
	c := &requestIDConfig{
		headers:  []string{"X-Request-ID", "X-Correlation-ID"},
		generate: id.NewULID,
		echoedAs: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(c)
	}

	sources := make([]internal.ExtractorSource, len(c.headers))
	for i, h := range c.headers {
		sources[i] = internal.FromHeader(h)
	}
	upstream := internal.NewExtractor(sources...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID, ok := upstream.Extract(r)
			if !ok || !validRequestID(reqID) {
				reqID = c.generate()
			}
			w.Header().Set(c.echoedAs, reqID)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, reqID)))
		})
	}
}

func validRequestID(s string) bool {
	if len(s) > maxRequestIDLength {
		return false
	}
	for i := range len(s) {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID returns the request ID, or "" outside the middleware.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// RequestIDExtractor adds "request_id" to log records of tagged requests.
func RequestIDExtractor() logger.ContextExtractor {
	return logger.StringExtractor("request_id", GetRequestID)
}
