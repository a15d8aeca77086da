package component

import (
	"github.com/dmitrymomot/loom/pkg/markup"
	"github.com/dmitrymomot/loom/pkg/urls"
)

// Link calls a handler on the server when clicked.
type Link struct {
	Base
	onClick   func(cycle Cycle) error
	stateless bool
}

// NewLink creates a link calling fn on click.
func NewLink(id string, fn func(cycle Cycle) error) *Link {
	l := &Link{onClick: fn}
	l.Init(id)
	return l
}

// Stateless marks the link as usable without a stored page. Its URL then
// recreates the page from bookmarkable parameters before calling the handler.
func (l *Link) Stateless() *Link {
	l.stateless = true
	return l
}

// StatelessHint implements StatelessHinter.
func (l *Link) StatelessHint() bool { return l.stateless }

// OnLinkClicked implements LinkListener.
func (l *Link) OnLinkClicked(cycle Cycle) error {
	if l.onClick == nil {
		return nil
	}
	return l.onClick(cycle)
}

// RenderTag implements TagRenderer.
func (l *Link) RenderTag(r *RenderContext, tag *markup.Tag) {
	renderHref(r, l, tag, r.URLs().ListenerURL(l, LinkListenerName))
}

// BookmarkablePageLink links to a page class with parameters.
type BookmarkablePageLink struct {
	Base
	class  string
	params *urls.PageParameters
}

// NewBookmarkablePageLink creates a link to class.
func NewBookmarkablePageLink(id, class string, params *urls.PageParameters) *BookmarkablePageLink {
	l := &BookmarkablePageLink{class: class, params: params.Clone()}
	l.Init(id)
	return l
}

// RenderTag implements TagRenderer.
func (l *BookmarkablePageLink) RenderTag(r *RenderContext, tag *markup.Tag) {
	renderHref(r, l, tag, r.URLs().BookmarkableURL(l.class, l.params))
}

// ExternalLink links to an arbitrary URL.
type ExternalLink struct {
	Base
}

// NewExternalLink creates a link to the URL held by m.
func NewExternalLink(id string, m Model) *ExternalLink {
	l := &ExternalLink{}
	l.Init(id)
	l.model = m
	return l
}

// RenderTag implements TagRenderer.
func (l *ExternalLink) RenderTag(r *RenderContext, tag *markup.Tag) {
	renderHref(r, l, tag, String(l.model))
}

// renderHref sets the link target. Disabled links lose it and are marked for
// assistive technology. Non-anchor tags navigate through onclick.
func renderHref(r *RenderContext, c Component, tag *markup.Tag, href string) {
	if !r.isEnabled(c) {
		tag.RemoveAttr("href")
		tag.RemoveAttr("onclick")
		tag.SetAttr("aria-disabled", "true")
		return
	}
	if tag.Name == "a" || tag.Name == "link" || tag.Name == "area" {
		tag.SetAttr("href", href)
		return
	}
	tag.SetAttr("onclick", "window.location.href='"+href+"';return false;")
}

// isEnabled reports whether c accepts input in this render.
func (r *RenderContext) isEnabled(c Component) bool {
	if !c.IsEnabledInHierarchy() {
		return false
	}
	return r.env.Authorizer == nil || r.env.Authorizer.IsActionAuthorized(c, ActionEnable)
}
