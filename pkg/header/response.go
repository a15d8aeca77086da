package header

import (
	"slices"
	"strings"
)

// Response collects header contributions for one page render.
// It is not safe for concurrent use.
type Response struct {
	bundles    *Bundles
	rendered   map[string]bool
	inProgress map[string]bool
	chain      []string
	priority   []Item
	regular    []Item
}

// NewResponse creates a response substituting items registered in bundles.
// bundles may be nil.
func NewResponse(bundles *Bundles) *Response {
	return &Response{
		bundles:    bundles,
		rendered:   make(map[string]bool),
		inProgress: make(map[string]bool),
	}
}

// Render adds item and its dependencies, dependencies first. Items already
// rendered are skipped. A dependency loop yields a *CycleError.
func (r *Response) Render(item Item) error {
	return r.render(item, IsPriority(item))
}

// WasRendered reports whether an item with key has been emitted, directly or
// through its bundle.
func (r *Response) WasRendered(key string) bool { return r.rendered[key] }

func (r *Response) render(item Item, prio bool) error {
	item = unwrap(item)
	key := item.Key()
	if r.rendered[key] {
		if prio {
			r.promote(key)
		}
		return nil
	}

	if err := r.enter(key); err != nil {
		return err
	}
	defer r.leave(key)

	for _, dep := range item.Dependencies() {
		if err := r.render(dep, prio || IsPriority(dep)); err != nil {
			return err
		}
	}
	// a dependency may have pulled in the bundle this item belongs to
	if r.rendered[key] {
		if prio {
			r.promote(key)
		}
		return nil
	}

	if b, ok := r.bundles.BundleFor(key); ok {
		return r.renderBundle(b, prio)
	}

	r.emit(item, prio)
	r.rendered[key] = true
	return nil
}

func (r *Response) renderBundle(b *Bundle, prio bool) error {
	key := b.Key()
	if r.rendered[key] {
		if prio {
			r.promote(key)
		}
		return nil
	}
	if err := r.enter(key); err != nil {
		return err
	}
	defer r.leave(key)

	for _, dep := range b.Dependencies() {
		if err := r.render(dep, prio || IsPriority(dep)); err != nil {
			return err
		}
	}

	r.emit(b, prio)
	r.rendered[key] = true
	for _, m := range b.members {
		r.rendered[unwrap(m).Key()] = true
	}
	return nil
}

func (r *Response) enter(key string) error {
	if r.inProgress[key] {
		start := slices.Index(r.chain, key)
		chain := append(slices.Clone(r.chain[start:]), key)
		return &CycleError{Chain: chain}
	}
	r.inProgress[key] = true
	r.chain = append(r.chain, key)
	return nil
}

func (r *Response) leave(key string) {
	delete(r.inProgress, key)
	r.chain = r.chain[:len(r.chain)-1]
}

func (r *Response) emit(item Item, prio bool) {
	if prio {
		r.priority = append(r.priority, item)
		return
	}
	r.regular = append(r.regular, item)
}

// promote moves an item emitted as regular, along with the regular items it
// depends on, into the priority group so it still follows its dependencies.
func (r *Response) promote(key string) {
	i := slices.IndexFunc(r.regular, func(it Item) bool { return emits(it, key) })
	if i < 0 {
		return
	}
	it := r.regular[i]
	r.regular = slices.Delete(r.regular, i, i+1)
	for _, dep := range it.Dependencies() {
		r.promote(unwrap(dep).Key())
	}
	r.priority = append(r.priority, it)
}

// emits reports whether emitted item it stands for key, itself or as the
// bundle holding key.
func emits(it Item, key string) bool {
	if it.Key() == key {
		return true
	}
	b, ok := it.(*Bundle)
	return ok && slices.ContainsFunc(b.members, func(m Item) bool { return unwrap(m).Key() == key })
}

// Items returns emitted items, priority items first.
func (r *Response) Items() []Item {
	out := make([]Item, 0, len(r.priority)+len(r.regular))
	out = append(out, r.priority...)
	return append(out, r.regular...)
}

// Len returns the number of emitted items.
func (r *Response) Len() int { return len(r.priority) + len(r.regular) }

// String renders the emitted items, one per line.
func (r *Response) String() string {
	var b strings.Builder
	for i, item := range r.Items() {
		if i > 0 {
			b.WriteByte('\n')
		}
		item.WriteTo(&b)
	}
	return b.String()
}

// Inject places head markup into an HTML document: before </head> when
// present, otherwise in a synthesized <head> right after the <html> tag, or
// at the very start.
func Inject(doc, head string) string {
	if head == "" {
		return doc
	}
	lower := strings.ToLower(doc)
	if i := strings.Index(lower, "</head>"); i >= 0 {
		return doc[:i] + head + doc[i:]
	}
	section := "<head>" + head + "</head>"
	if i := strings.Index(lower, "<html"); i >= 0 {
		if end := strings.IndexByte(doc[i:], '>'); end >= 0 {
			at := i + end + 1
			return doc[:at] + section + doc[at:]
		}
	}
	return section + doc
}
