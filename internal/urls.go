package internal

import (
	"github.com/dmitrymomot/loom/pkg/coding"
	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/urls"
)

// cycleURLs generates the links of a render, relative to the URL the
// response will be shown at.
type cycleURLs struct {
	rc       *RequestCycle
	renderer *urls.Renderer
}

func (u *cycleURLs) ListenerURL(c component.Component, listener string) string {
	return u.listenerURL(c, listener, -1)
}

func (u *cycleURLs) BehaviorURL(c component.Component, behaviorID int) string {
	return u.listenerURL(c, component.BehaviorListenerName, behaviorID)
}

func (u *cycleURLs) BookmarkableURL(class string, params *urls.PageParameters) string {
	return u.renderer.RenderRelative(u.rc.bookmarkableURL(coding.DefaultPageMap, class, params))
}

func (u *cycleURLs) ResourceURL(key string) string {
	return u.renderer.RenderRelative(u.rc.app.coding.EncodeResource(key))
}

// listenerURL addresses a listener on c. A stateless page is addressed by
// its class and parameters; a stateful page is stored so its id can be used.
func (u *cycleURLs) listenerURL(c component.Component, listener string, behaviorID int) string {
	p := c.Page()
	if p == nil {
		if pg, ok := c.(*component.Page); ok {
			p = pg
		}
	}
	if p == nil {
		return ""
	}

	ref := coding.ListenerRef{
		PageMap:       p.PageMapName(),
		PageID:        -1,
		ComponentPath: c.Path(),
		Interface:     listener,
		BehaviorID:    behaviorID,
		URLDepth:      len(u.renderer.Base.PathSegments()),
	}
	enc := u.rc.app.coding

	if p.IsStateless() {
		return u.renderer.RenderRelative(enc.EncodeBookmarkableListener(p.Class(), p.Parameters(), ref))
	}

	if err := u.rc.storePage(p); err != nil {
		u.rc.logger.ErrorContext(u.rc.Context(), "store page for listener url",
			"error", err,
			"page_class", p.Class(),
			"component_path", c.Path(),
		)
		return ""
	}
	ref.PageID = p.PageID()
	ref.Version = p.Version()

	if _, mounted := enc.MountFor(p.Class()); mounted && p.WasCreatedBookmarkable() {
		return u.renderer.RenderRelative(enc.EncodeBookmarkableListener(p.Class(), p.Parameters(), ref))
	}
	return u.renderer.RenderRelative(enc.EncodeListener(ref))
}

// bookmarkableURL returns the URL constructing class. The home page without
// parameters lives at the application root.
func (rc *RequestCycle) bookmarkableURL(pageMap, class string, params *urls.PageParameters) urls.URL {
	if class == rc.app.homePage && pageMap == coding.DefaultPageMap && (params == nil || params.IsEmpty()) {
		return urls.New([]string{"", ""})
	}
	if params == nil {
		params = &urls.PageParameters{}
	}
	return rc.app.coding.EncodeBookmarkable(pageMap, class, params)
}

// pageURL returns the URL showing p: its bookmarkable URL when stateless,
// the stored page otherwise.
func (rc *RequestCycle) pageURL(p *component.Page) (urls.URL, error) {
	if p.IsStateless() {
		return rc.bookmarkableURL(p.PageMapName(), p.Class(), p.Parameters()), nil
	}
	if err := rc.storePage(p); err != nil {
		return urls.URL{}, err
	}
	return rc.app.coding.EncodePage(p.PageMapName(), p.PageID(), p.Version()), nil
}
