package header

import (
	"html"
	"strings"
)

// Item is a single header contribution. Items with equal keys are rendered once.
type Item interface {
	Key() string
	Dependencies() []Item
	WriteTo(b *strings.Builder)
}

// Kind tells how a resource reference is linked into the page.
type Kind int

const (
	JavaScript Kind = iota
	CSS
)

// Reference identifies a static or dynamic resource served by the application.
type Reference struct {
	// Scope groups references, typically the owning component class.
	Scope string
	Name  string
	Kind  Kind
	// URL overrides the generated shared resource URL.
	URL string
	// Media applies to CSS references.
	Media string
	Defer bool

	deps []Item
}

// JS creates a JavaScript reference.
func JS(scope, name string, deps ...Item) *Reference {
	return &Reference{Scope: scope, Name: name, Kind: JavaScript, deps: deps}
}

// Stylesheet creates a CSS reference.
func Stylesheet(scope, name string, deps ...Item) *Reference {
	return &Reference{Scope: scope, Name: name, Kind: CSS, deps: deps}
}

// ExternalJS references a script by absolute URL.
func ExternalJS(url string, deps ...Item) *Reference {
	return &Reference{Name: url, Kind: JavaScript, URL: url, deps: deps}
}

// ExternalCSS references a stylesheet by absolute URL.
func ExternalCSS(url string, deps ...Item) *Reference {
	return &Reference{Name: url, Kind: CSS, URL: url, deps: deps}
}

// ResourceKey is the key the resource is registered under in the shared
// resource registry.
func (r *Reference) ResourceKey() string {
	if r.Scope == "" {
		return r.Name
	}
	return r.Scope + "/" + r.Name
}

// Key implements Item.
func (r *Reference) Key() string {
	if r.Kind == CSS {
		return "css:" + r.ResourceKey()
	}
	return "js:" + r.ResourceKey()
}

// Dependencies implements Item.
func (r *Reference) Dependencies() []Item { return r.deps }

// Href returns the URL the reference renders with.
func (r *Reference) Href() string {
	if r.URL != "" {
		return r.URL
	}
	return ResourcePrefix + r.ResourceKey()
}

// WriteTo implements Item.
func (r *Reference) WriteTo(b *strings.Builder) {
	href := html.EscapeString(r.Href())
	if r.Kind == CSS {
		b.WriteString(`<link rel="stylesheet" href="`)
		b.WriteString(href)
		b.WriteByte('"')
		if r.Media != "" {
			b.WriteString(` media="`)
			b.WriteString(html.EscapeString(r.Media))
			b.WriteByte('"')
		}
		b.WriteString(" />")
		return
	}
	b.WriteString(`<script src="`)
	b.WriteString(href)
	b.WriteByte('"')
	if r.Defer {
		b.WriteString(" defer")
	}
	b.WriteString("></script>")
}

// ResourcePrefix is the path shared resources are served under.
const ResourcePrefix = "/resources/"

// content is inline script or style.
type content struct {
	id   string
	kind Kind
	body string
	deps []Item
}

// JSContent renders an inline script. Contributions with the same id render once.
func JSContent(id, script string, deps ...Item) Item {
	return &content{id: id, kind: JavaScript, body: script, deps: deps}
}

// CSSContent renders an inline style block.
func CSSContent(id, css string, deps ...Item) Item {
	return &content{id: id, kind: CSS, body: css, deps: deps}
}

func (c *content) Key() string {
	if c.kind == CSS {
		return "css-content:" + c.id
	}
	return "js-content:" + c.id
}

func (c *content) Dependencies() []Item { return c.deps }

func (c *content) WriteTo(b *strings.Builder) {
	tag := "script"
	if c.kind == CSS {
		tag = "style"
	}
	b.WriteString("<" + tag)
	if c.id != "" {
		b.WriteString(` id="` + html.EscapeString(c.id) + `"`)
	}
	b.WriteString(">")
	b.WriteString(c.body)
	b.WriteString("</" + tag + ">")
}

type raw struct {
	key  string
	html string
}

// String contributes markup as is, for example a <wicket:head> section.
func String(key, markup string) Item {
	return &raw{key: key, html: markup}
}

func (r *raw) Key() string                { return "string:" + r.key }
func (r *raw) Dependencies() []Item       { return nil }
func (r *raw) WriteTo(b *strings.Builder) { b.WriteString(r.html) }

type priority struct {
	Item
}

// Priority marks an item to be rendered before all regular items.
func Priority(item Item) Item {
	if _, ok := item.(*priority); ok {
		return item
	}
	return &priority{Item: item}
}

// IsPriority reports whether item was wrapped by Priority.
func IsPriority(item Item) bool {
	_, ok := item.(*priority)
	return ok
}

func unwrap(item Item) Item {
	if p, ok := item.(*priority); ok {
		return p.Item
	}
	return item
}
