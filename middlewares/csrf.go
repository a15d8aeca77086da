package middlewares

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/dmitrymomot/loom/pkg/coding"
	"github.com/dmitrymomot/loom/pkg/logger"
)

// CSRFConfig configures the CSRF middleware.
type CSRFConfig struct {
	Logger *slog.Logger
	// OnReject answers a rejected request. Default: 403.
	OnReject func(w http.ResponseWriter, r *http.Request)
	// TrustedOrigins are accepted besides the request host,
	// as "scheme://host[:port]".
	TrustedOrigins []string
	// RejectMissing rejects listener requests with neither Origin nor Referer.
	RejectMissing bool
}

// CSRFOption configures CSRFConfig.
type CSRFOption func(*CSRFConfig)

// WithTrustedOrigins accepts listener calls from other origins.
func WithTrustedOrigins(origins ...string) CSRFOption {
	return func(cfg *CSRFConfig) {
		for _, o := range origins {
			cfg.TrustedOrigins = append(cfg.TrustedOrigins, strings.ToLower(strings.TrimSuffix(o, "/")))
		}
	}
}

// WithCSRFRejectMissing rejects listener calls that name no source origin.
func WithCSRFRejectMissing() CSRFOption {
	return func(cfg *CSRFConfig) {
		cfg.RejectMissing = true
	}
}

// WithCSRFRejectHandler replaces the default 403 response.
func WithCSRFRejectHandler(fn func(w http.ResponseWriter, r *http.Request)) CSRFOption {
	return func(cfg *CSRFConfig) {
		cfg.OnReject = fn
	}
}

// WithCSRFLogger sets the logger rejections are reported to.
func WithCSRFLogger(l *slog.Logger) CSRFOption {
	return func(cfg *CSRFConfig) {
		cfg.Logger = l
	}
}

// CSRF returns middleware that rejects listener calls, requests carrying a
// wicket:interface parameter, whose Origin (or Referer when Origin is
// absent) names a different origin than the request. Bookmarkable pages and
// resources pass unchecked.
func CSRF(opts ...CSRFOption) func(http.Handler) http.Handler {
	cfg := &CSRFConfig{Logger: logger.NewNope()}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !r.URL.Query().Has(coding.InterfaceParam) || cfg.allowed(r) {
				next.ServeHTTP(w, r)
				return
			}

			cfg.Logger.WarnContext(r.Context(), "cross-origin listener call rejected",
				"error", ErrCrossOrigin,
				"origin", sourceOrigin(r),
				"url", r.URL.RequestURI(),
			)
			if cfg.OnReject != nil {
				cfg.OnReject(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

func (cfg *CSRFConfig) allowed(r *http.Request) bool {
	src := sourceOrigin(r)
	if src == "" {
		return !cfg.RejectMissing
	}
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	origin := strings.ToLower(u.Scheme + "://" + u.Host)
	return slices.Contains(cfg.TrustedOrigins, origin)
}

// sourceOrigin returns the Origin header, or the Referer when the browser
// sent no Origin.
func sourceOrigin(r *http.Request) string {
	if o := r.Header.Get("Origin"); o != "" && o != "null" {
		return o
	}
	return r.Header.Get("Referer")
}
