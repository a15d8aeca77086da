package component

import (
	"strings"

	"github.com/dmitrymomot/loom/pkg/header"
	"github.com/dmitrymomot/loom/pkg/urls"
)

// Page is the root of a component tree. Pages live in the session page map
// between requests, so a later request can call listeners on them.
type Page struct {
	ContainerBase

	class        string
	chain        []string
	pageID       int
	pageMap      string
	params       *urls.PageParameters
	bookmarkable bool
	statelessOK  bool
	fresh        bool
	renderCount  int
	seq          int

	versioned   bool
	maxVersions int
	version     int
	history     []versionRecord
	pending     []Change
	rendering   bool
	calls       int

	feedback     []FeedbackMessage
	headerItems  []header.Item
	beforeRender []func() error
	detachHooks  []func()
}

// PageOption configures a page.
type PageOption func(*Page)

// Extends declares base classes for markup inheritance, nearest first.
func Extends(classes ...string) PageOption {
	return func(p *Page) {
		p.chain = append(p.chain, classes...)
	}
}

// Stateless hints that the page keeps no state worth storing. The page is
// still stateful when it contains stateful components.
func Stateless() PageOption {
	return func(p *Page) { p.statelessOK = true }
}

// Unversioned turns off change tracking.
func Unversioned() PageOption {
	return func(p *Page) { p.versioned = false }
}

// MaxVersions bounds how many versions can be rolled back. Default: 20.
func MaxVersions(n int) PageOption {
	return func(p *Page) {
		if n > 0 {
			p.maxVersions = n
		}
	}
}

// NewPage creates a page of class. The class names the page in bookmarkable
// URLs and its markup resource.
func NewPage(class string, params *urls.PageParameters, opts ...PageOption) *Page {
	p := &Page{
		class:       class,
		chain:       []string{class},
		params:      params.Clone(),
		fresh:       true,
		versioned:   true,
		maxVersions: 20,
		pageID:      -1,
	}
	p.InitContainer(p, class)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Page) page() *Page { return p }

// Page returns p.
func (p *Page) Page() *Page { return p }

// Path of a page is empty: component paths are relative to it.
func (p *Page) Path() string { return "" }

func (p *Page) isQueueRegion() bool { return true }

// Class returns the page class name.
func (p *Page) Class() string { return p.class }

// MarkupChain returns the class and its declared base classes.
func (p *Page) MarkupChain() []string { return p.chain }

// PageID returns the id assigned by the page map, or -1 before storing.
func (p *Page) PageID() int { return p.pageID }

// SetPageID is called by the page map when the page is stored.
func (p *Page) SetPageID(id int) { p.pageID = id }

// PageMapName returns the name of the page map holding the page.
func (p *Page) PageMapName() string { return p.pageMap }

// SetPageMapName is called by the page map when the page is stored.
func (p *Page) SetPageMapName(name string) { p.pageMap = name }

// Parameters returns the parameters the page was created with.
func (p *Page) Parameters() *urls.PageParameters { return p.params }

// WasCreatedBookmarkable reports whether the page was built from a bookmarkable URL.
func (p *Page) WasCreatedBookmarkable() bool { return p.bookmarkable }

// SetCreatedBookmarkable marks the page as created through its bookmarkable URL.
func (p *Page) SetCreatedBookmarkable(v bool) { p.bookmarkable = v }

// IsNewInstance reports whether the page was created during the current request.
func (p *Page) IsNewInstance() bool { return p.fresh }

// RenderCount returns how many times the page has been rendered.
func (p *Page) RenderCount() int { return p.renderCount }

// IsStateless reports whether the page needs no storing: it was declared
// stateless and every visible component and behavior agrees.
func (p *Page) IsStateless() bool {
	if !p.statelessOK {
		return false
	}
	stateless := true
	_ = Walk(p, func(c Component) error {
		if !c.IsVisible() {
			return SkipChildren
		}
		if h, ok := c.(StatelessHinter); ok && !h.StatelessHint() {
			stateless = false
			return StopWalk
		}
		for _, b := range c.Behaviors() {
			if h, ok := b.(StatelessHinter); ok && !h.StatelessHint() {
				stateless = false
				return StopWalk
			}
		}
		return nil
	})
	return stateless
}

// Lookup finds a component by its page relative path.
func (p *Page) Lookup(path string) (Component, bool) {
	if path == "" {
		return p, true
	}
	var cur Component = p
	for _, id := range strings.Split(path, PathSeparator) {
		c, ok := cur.(Container)
		if !ok {
			return nil, false
		}
		if cur = c.Get(id); cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// AddHeaderItem contributes an item to the page head on every render.
func (p *Page) AddHeaderItem(items ...header.Item) {
	p.headerItems = append(p.headerItems, items...)
}

// RenderHead implements HeaderContributor.
func (p *Page) RenderHead(resp *header.Response) error {
	for _, item := range p.headerItems {
		if err := resp.Render(item); err != nil {
			return err
		}
	}
	return nil
}

// OnBeforeRenderFunc registers fn to run before each render, after queued
// components are placed.
func (p *Page) OnBeforeRenderFunc(fn func() error) {
	p.beforeRender = append(p.beforeRender, fn)
}

// OnDetachFunc registers fn to run at the end of every request.
func (p *Page) OnDetachFunc(fn func()) {
	p.detachHooks = append(p.detachHooks, fn)
}

// OnBeforeRender implements BeforeRenderer.
func (p *Page) OnBeforeRender() error {
	for _, fn := range p.beforeRender {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

// BeforeCallComponent starts a listener call. Changes made until the matching
// AfterCallComponent form one version.
func (p *Page) BeforeCallComponent(Component, string) {
	p.calls++
}

// AfterCallComponent ends a listener call and commits recorded changes.
func (p *Page) AfterCallComponent(Component, string) {
	if p.calls > 0 {
		p.calls--
	}
	if p.calls == 0 {
		p.CommitVersion()
	}
}

// InCall reports whether a listener call is in progress.
func (p *Page) InCall() bool { return p.calls > 0 }

// Detach ends the request for the page: detachable models and components
// drop transient state and the page stops being a new instance.
func (p *Page) Detach() {
	_ = Walk(p, func(c Component) error {
		if d, ok := c.(Detacher); ok {
			d.OnDetach()
		}
		if d, ok := c.Model().(Detachable); ok {
			d.Detach()
		}
		return nil
	})
	for _, fn := range p.detachHooks {
		fn()
	}
	p.fresh = false
}

func (p *Page) nextSeq() int {
	p.seq++
	return p.seq
}
