package pagemap

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/loom/pkg/cache"
	"github.com/dmitrymomot/loom/pkg/component"
)

// DefaultMaxPages bounds a page map when no limit is configured.
const DefaultMaxPages = 10

// PageMap holds the pages of one browser window. The least recently used
// page is evicted once the map is full.
type PageMap struct {
	name   string
	pages  *cache.Memory[*component.Page]
	mu     sync.Mutex
	nextID int
}

// New creates a page map holding at most maxPages pages.
func New(name string, maxPages int) *PageMap {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &PageMap{
		name: name,
		pages: cache.NewMemory[*component.Page](
			cache.WithMaxEntries(maxPages),
			cache.WithCleanupInterval(0),
		),
	}
}

// Name returns the page map name. The default map has an empty name.
func (m *PageMap) Name() string { return m.name }

// Put stores p, assigning a page id on first store.
func (m *PageMap) Put(p *component.Page) {
	m.mu.Lock()
	if p.PageID() < 0 {
		p.SetPageID(m.nextID)
		m.nextID++
	}
	m.mu.Unlock()
	p.SetPageMapName(m.name)
	_ = m.pages.Set(context.Background(), key(p.PageID()), p, -1)
}

// Get returns page id at version. A negative version means the latest one.
// Older versions are restored in place by rolling back recorded changes.
func (m *PageMap) Get(id, version int) (*component.Page, error) {
	p, err := m.pages.Get(context.Background(), key(id))
	if err != nil {
		return nil, errors.Join(ErrPageNotFound, errors.New(m.name+":"+strconv.Itoa(id)))
	}
	if version < 0 || version == p.Version() {
		return p, nil
	}
	if err := p.RollbackTo(version); err != nil {
		return nil, errors.Join(ErrVersionUnavailable, err)
	}
	return p, nil
}

// Remove drops page id.
func (m *PageMap) Remove(id int) {
	_ = m.pages.Delete(context.Background(), key(id))
}

// LastOfClass returns the most recently used page of class.
func (m *PageMap) LastOfClass(class string) (*component.Page, bool) {
	for _, k := range m.pages.Keys() {
		if p, ok := m.pages.Peek(k); ok && p.Class() == class {
			return p, true
		}
	}
	return nil, false
}

// Len returns the number of stored pages.
func (m *PageMap) Len() int { return m.pages.Len() }

// Clear removes all pages.
func (m *PageMap) Clear() { _ = m.pages.Clear(context.Background()) }

func key(id int) string { return strconv.Itoa(id) }

// Maps is the set of page maps of one session.
type Maps struct {
	mu       sync.Mutex
	maps     map[string]*PageMap
	maxPages int
}

// NewMaps creates an empty set whose maps hold at most maxPages pages each.
func NewMaps(maxPages int) *Maps {
	return &Maps{maps: make(map[string]*PageMap), maxPages: maxPages}
}

// Get returns the page map called name, creating it on first use.
func (s *Maps) Get(name string) *PageMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.maps[name]
	if !ok {
		m = New(name, s.maxPages)
		s.maps[name] = m
	}
	return m
}

// Lookup returns an existing page map.
func (s *Maps) Lookup(name string) (*PageMap, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.maps[name]
	return m, ok
}

// Names returns the names of existing page maps.
func (s *Maps) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.maps))
	for name := range s.maps {
		out = append(out, name)
	}
	return out
}

// Remove drops a page map and its pages.
func (s *Maps) Remove(name string) {
	s.mu.Lock()
	m, ok := s.maps[name]
	delete(s.maps, name)
	s.mu.Unlock()
	if ok {
		m.Clear()
	}
}

// NewName returns a fresh page map name for a new browser window.
func NewName() string {
	return "w" + uuid.NewString()[:8]
}
