package internal

import (
	"net/http"
	"strings"
)

// ExtractorSource extracts a value from a request.
// Returns the value and true if found, or ("", false) if not present.
type ExtractorSource = func(*http.Request) (string, bool)

// Extractor tries multiple sources in order and returns the first match.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract iterates sources in order and returns the first non-empty value.
// Returns ("", false) if all sources miss.
func (e Extractor) Extract(r *http.Request) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(r); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// FromHeader returns a source that reads from a request header.
func FromHeader(name string) ExtractorSource {
	return func(r *http.Request) (string, bool) {
		return nonEmpty(r.Header.Get(name))
	}
}

// FromQuery returns a source that reads from a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(r *http.Request) (string, bool) {
		return nonEmpty(r.URL.Query().Get(name))
	}
}

// FromCookie returns a source that reads from a plain cookie.
func FromCookie(name string) ExtractorSource {
	return func(r *http.Request) (string, bool) {
		c, err := r.Cookie(name)
		if err != nil {
			return "", false
		}
		return nonEmpty(c.Value)
	}
}

// FromForm returns a source that reads from a form field.
func FromForm(name string) ExtractorSource {
	return func(r *http.Request) (string, bool) {
		return nonEmpty(r.FormValue(name))
	}
}

// FromBearerToken returns a source that reads a Bearer token from the Authorization header.
// Uses case-insensitive comparison on the "Bearer " prefix.
func FromBearerToken() ExtractorSource {
	return func(r *http.Request) (string, bool) {
		auth := r.Header.Get("Authorization")
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return "", false
		}
		return nonEmpty(auth[7:])
	}
}

func nonEmpty(v string) (string, bool) {
	return v, v != ""
}
