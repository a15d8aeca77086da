package header

import (
	"strings"
	"sync"
)

// Bundle replaces a group of resources with a single combined resource.
// Rendering any member renders the bundle instead and marks every member as
// rendered.
type Bundle struct {
	ref     *Reference
	members []Item
}

// NewBundle creates a bundle served as the shared resource scope/name.
func NewBundle(scope, name string, kind Kind, members ...Item) *Bundle {
	return &Bundle{
		ref:     &Reference{Scope: scope, Name: name, Kind: kind},
		members: members,
	}
}

// Reference returns the combined resource reference.
func (b *Bundle) Reference() *Reference { return b.ref }

// Members returns the bundled items.
func (b *Bundle) Members() []Item { return b.members }

// Key implements Item.
func (b *Bundle) Key() string { return b.ref.Key() }

// Dependencies returns the dependencies of all members that live outside the bundle.
func (b *Bundle) Dependencies() []Item {
	inside := make(map[string]bool, len(b.members))
	for _, m := range b.members {
		inside[m.Key()] = true
	}
	var deps []Item
	seen := make(map[string]bool)
	for _, m := range b.members {
		for _, d := range m.Dependencies() {
			k := unwrap(d).Key()
			if inside[k] || seen[k] {
				continue
			}
			seen[k] = true
			deps = append(deps, d)
		}
	}
	return deps
}

// WriteTo implements Item.
func (b *Bundle) WriteTo(sb *strings.Builder) { b.ref.WriteTo(sb) }

// Bundles is the application-wide bundle registry.
type Bundles struct {
	mu       sync.RWMutex
	byMember map[string]*Bundle
	all      []*Bundle
}

// NewBundles creates an empty registry.
func NewBundles() *Bundles {
	return &Bundles{byMember: make(map[string]*Bundle)}
}

// Register adds a bundle. Nothing is registered when any member already
// belongs to another bundle.
func (bs *Bundles) Register(b *Bundle) error {
	if len(b.members) == 0 {
		return ErrEmptyBundle
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()

	for _, m := range b.members {
		if _, ok := bs.byMember[unwrap(m).Key()]; ok {
			return ErrAlreadyBundled
		}
	}
	for _, m := range b.members {
		bs.byMember[unwrap(m).Key()] = b
	}
	bs.all = append(bs.all, b)
	return nil
}

// BundleFor returns the bundle containing the item with key.
func (bs *Bundles) BundleFor(key string) (*Bundle, bool) {
	if bs == nil {
		return nil, false
	}
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	b, ok := bs.byMember[key]
	return b, ok
}

// All returns registered bundles in registration order.
func (bs *Bundles) All() []*Bundle {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return append([]*Bundle(nil), bs.all...)
}
