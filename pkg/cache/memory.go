package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryOption configures a Memory cache.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	ttl      time.Duration
	interval time.Duration
	max      int
}

// WithDefaultTTL sets the ttl applied when Set gets zero. Default one hour.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.ttl = d }
}

// WithCleanupInterval sets how often expired entries are swept. Zero
// disables the sweeper; expired entries then go on access. Default one
// minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.interval = d }
}

// WithMaxEntries bounds the cache; the least recently used entry makes room
// for a new one. Zero is unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(c *memoryConfig) { c.max = n }
}

type item[V any] struct {
	key     string
	value   V
	expires time.Time
}

func (it *item[V]) expired(now time.Time) bool {
	return !it.expires.IsZero() && now.After(it.expires)
}

// Memory is an in-process LRU cache with per-entry expiry.
type Memory[V any] struct {
	mu     sync.Mutex
	cfg    memoryConfig
	index  map[string]*list.Element
	lru    *list.List // front is most recently used
	stop   chan struct{}
	closed bool
}

// NewMemory creates a Memory cache and starts its sweeper.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	cfg := memoryConfig{ttl: time.Hour, interval: time.Minute}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Memory[V]{
		cfg:   cfg,
		index: make(map[string]*list.Element),
		lru:   list.New(),
		stop:  make(chan struct{}),
	}
	if cfg.interval > 0 {
		go m.sweep()
	}
	return m
}

// Get returns the live value of key and marks it recently used.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.live(key)
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	m.lru.MoveToFront(el)
	return el.Value.(*item[V]).value, nil
}

// Peek returns the live value of key without touching recency.
func (m *Memory[V]) Peek(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.index[key]; ok {
		if it := el.Value.(*item[V]); !it.expired(time.Now()) {
			return it.value, true
		}
	}
	var zero V
	return zero, false
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if ttl == 0 {
		ttl = m.cfg.ttl
	}
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	if el, ok := m.index[key]; ok {
		it := el.Value.(*item[V])
		it.value, it.expires = value, expires
		m.lru.MoveToFront(el)
		return nil
	}
	if m.cfg.max > 0 && m.lru.Len() >= m.cfg.max {
		m.remove(m.lru.Back())
	}
	m.index[key] = m.lru.PushFront(&item[V]{key: key, value: value, expires: expires})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if el, ok := m.index[key]; ok {
		m.remove(el)
	}
	return nil
}

// Take removes key and returns its live value.
func (m *Memory[V]) Take(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.live(key)
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	m.remove(el)
	return el.Value.(*item[V]).value, nil
}

// Len counts entries, including expired ones not yet swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

// Keys lists live keys, most recently used first.
func (m *Memory[V]) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	keys := make([]string, 0, m.lru.Len())
	for el := m.lru.Front(); el != nil; el = el.Next() {
		if it := el.Value.(*item[V]); !it.expired(now) {
			keys = append(keys, it.key)
		}
	}
	return keys
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	clear(m.index)
	m.lru.Init()
	return nil
}

// Close stops the sweeper. Further writes fail with ErrClosed.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.stop)
	}
	return nil
}

// live returns the element of key, dropping it when expired. Callers hold mu.
func (m *Memory[V]) live(key string) (*list.Element, bool) {
	el, ok := m.index[key]
	if !ok {
		return nil, false
	}
	if el.Value.(*item[V]).expired(time.Now()) {
		m.remove(el)
		return nil, false
	}
	return el, true
}

func (m *Memory[V]) remove(el *list.Element) {
	delete(m.index, el.Value.(*item[V]).key)
	m.lru.Remove(el)
}

func (m *Memory[V]) sweep() {
	t := time.NewTicker(m.cfg.interval)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-t.C:
			m.mu.Lock()
			for el := m.lru.Back(); el != nil; {
				prev := el.Prev()
				if el.Value.(*item[V]).expired(now) {
					m.remove(el)
				}
				el = prev
			}
			m.mu.Unlock()
		}
	}
}

var (
	_ Cache[any] = (*Memory[any])(nil)
	_ Taker[any] = (*Memory[any])(nil)
)
