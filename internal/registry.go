package internal

import (
	"errors"
	"net/http"
	"slices"
	"sync"

	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/urls"
)

// PageFactory builds a page from its parameters. It may return a
// RestartResponseError or an HTTPError to answer the request otherwise.
type PageFactory func(c component.Cycle, params *urls.PageParameters) (*component.Page, error)

// PageRegistry resolves page classes named in URLs to factories.
type PageRegistry struct {
	mu        sync.RWMutex
	factories map[string]PageFactory
}

// NewPageRegistry creates an empty registry.
func NewPageRegistry() *PageRegistry {
	return &PageRegistry{factories: make(map[string]PageFactory)}
}

// Register binds class to factory.
func (r *PageRegistry) Register(class string, factory PageFactory) error {
	if class == "" || factory == nil {
		return errors.Join(ErrUnknownPageClass, errors.New("empty class or nil factory"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[class]; ok {
		return errors.Join(ErrDuplicatePageClass, errors.New(class))
	}
	r.factories[class] = factory
	return nil
}

// Has reports whether class is registered.
func (r *PageRegistry) Has(class string) bool {
	_, ok := r.factory(class)
	return ok
}

// Classes returns the registered classes, sorted.
func (r *PageRegistry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for c := range r.factories {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

func (r *PageRegistry) factory(class string) (PageFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[class]
	return f, ok
}

// ResourceRegistry holds the shared resources served under /resources/.
type ResourceRegistry struct {
	mu       sync.RWMutex
	handlers map[string]http.Handler
}

// NewResourceRegistry creates an empty registry.
func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{handlers: make(map[string]http.Handler)}
}

// Register serves h at /resources/key.
func (r *ResourceRegistry) Register(key string, h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[key] = h
}

// Lookup returns the handler of key.
func (r *ResourceRegistry) Lookup(key string) (http.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[key]
	return h, ok
}

// Keys returns the registered keys, sorted.
func (r *ResourceRegistry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
