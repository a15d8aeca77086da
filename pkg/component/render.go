package component

import (
	"context"
	"errors"
	"html"
	"strings"

	"golang.org/x/text/language"

	"github.com/dmitrymomot/loom/pkg/header"
	"github.com/dmitrymomot/loom/pkg/markup"
	"github.com/dmitrymomot/loom/pkg/urls"
)

// MarkupLoader resolves markup for component classes. *markup.Loader implements it.
type MarkupLoader interface {
	Load(ctx context.Context, class, style string, locale language.Tag) (*markup.Markup, error)
	LoadInherited(ctx context.Context, chain []string, style string, locale language.Tag) (*markup.Markup, error)
}

// HeaderStrategy orders header contributions of a parent and its children.
type HeaderStrategy int

const (
	// ChildFirst lets children contribute before their parent, so a page can
	// override what its panels add.
	ChildFirst HeaderStrategy = iota
	ParentFirst
)

// RenderEnv holds the collaborators a render needs.
type RenderEnv struct {
	Loader          MarkupLoader
	URLs            URLs
	Localizer       Localizer
	Authorizer      Authorizer
	Bundles         *header.Bundles
	HeaderStrategy  HeaderStrategy
	StripWicketTags bool
	Locale          language.Tag
	Style           string
}

// RenderContext is passed to components while a page renders.
type RenderContext struct {
	ctx        context.Context
	page       *Page
	env        RenderEnv
	out        *strings.Builder
	pageMarkup *markup.Markup
	frames     []bodyFrame
	head       string
	headDone   bool

	capture  Component
	captured bool
	capStart int
	capEnd   int
}

// bodyFrame is the markup a border wraps, rendered at its <wicket:body>.
type bodyFrame struct {
	body *BorderBody
	frag markup.Fragment
}

// markupProvider is implemented by components rendering their own markup file
// or a section of another one instead of the body of their tag.
type markupProvider interface {
	associatedMarkup(r *RenderContext) (*markup.Markup, markup.Fragment, error)
}

// Render renders the page: places queued components, runs before-render hooks,
// aggregates header contributions and writes the markup.
func (p *Page) Render(ctx context.Context, env RenderEnv) (string, error) {
	return p.newRenderContext(ctx, env).run()
}

// RenderComponent renders the page and returns only the markup of c, for
// partial updates. Header contributions are not included.
func (p *Page) RenderComponent(ctx context.Context, env RenderEnv, c Component) (string, error) {
	r := p.newRenderContext(ctx, env)
	r.capture = c
	out, err := r.run()
	if err != nil {
		return "", err
	}
	if !r.captured {
		return "", errors.Join(ErrNotRendered, errors.New(c.Path()))
	}
	return out[r.capStart:r.capEnd], nil
}

// Prepare places queued components and runs before-render hooks without
// writing markup, so a page built for a single listener call has the
// component tree its markup declares.
func (p *Page) Prepare(ctx context.Context, env RenderEnv) error {
	r := p.newRenderContext(ctx, env)
	if env.Loader == nil {
		return ErrNoAssociatedMarkup
	}
	p.rendering = true
	defer func() { p.rendering = false }()

	m, err := r.loadMarkup(p.chain)
	if err != nil {
		return err
	}
	r.pageMarkup = m
	if err := p.OnBeforeRender(); err != nil {
		return err
	}
	return r.prepareRange(m, 0, m.Len(), p, true)
}

func (p *Page) newRenderContext(ctx context.Context, env RenderEnv) *RenderContext {
	if env.URLs == nil {
		env.URLs = nopURLs{}
	}
	return &RenderContext{ctx: ctx, page: p, env: env, out: &strings.Builder{}}
}

func (r *RenderContext) run() (string, error) {
	p := r.page
	if r.env.Loader == nil {
		return "", ErrNoAssociatedMarkup
	}

	p.CommitVersion()
	p.rendering = true
	defer func() { p.rendering = false }()

	m, err := r.env.Loader.LoadInherited(r.ctx, p.chain, r.env.Style, r.env.Locale)
	if err != nil {
		return "", err
	}
	r.pageMarkup = m

	if err := p.OnBeforeRender(); err != nil {
		return "", err
	}
	if err := r.prepareRange(m, 0, m.Len(), p, true); err != nil {
		return "", err
	}

	resp := header.NewResponse(r.env.Bundles)
	if err := r.collectHeaders(p, resp); err != nil {
		return "", err
	}
	r.head = resp.String()

	if err := r.renderRange(m, 0, m.Len(), p); err != nil {
		return "", err
	}

	out := r.out.String()
	if !r.headDone && r.capture == nil {
		out = header.Inject(out, r.head)
	}
	p.renderCount++
	p.feedback = nil
	return out, nil
}

// Context returns the request context.
func (r *RenderContext) Context() context.Context { return r.ctx }

// Page returns the page being rendered.
func (r *RenderContext) Page() *Page { return r.page }

// URLs returns the link generator.
func (r *RenderContext) URLs() URLs { return r.env.URLs }

// Locale returns the locale markup and messages are resolved for.
func (r *RenderContext) Locale() language.Tag { return r.env.Locale }

// Localize resolves a message key.
func (r *RenderContext) Localize(key string) (string, bool) {
	if r.env.Localizer == nil {
		return "", false
	}
	return r.env.Localizer.Localize(key)
}

// WriteString writes markup as is.
func (r *RenderContext) WriteString(s string) { r.out.WriteString(s) }

// WriteEscaped writes text escaped for HTML.
func (r *RenderContext) WriteEscaped(s string) { r.out.WriteString(html.EscapeString(s)) }

// RenderFragment renders markup with c as the container for component tags.
func (r *RenderContext) RenderFragment(f markup.Fragment, c Container) error {
	if f.IsEmpty() {
		return nil
	}
	return r.renderRange(f.Markup, f.Start, f.End, c)
}

func (r *RenderContext) strip() bool { return r.env.StripWicketTags }

// isRenderable reports whether c is visible and allowed to render.
func (r *RenderContext) isRenderable(c Component) bool {
	if !c.IsVisible() {
		return false
	}
	if r.env.Authorizer != nil && !r.env.Authorizer.IsActionAuthorized(c, ActionRender) {
		return false
	}
	return true
}

func (r *RenderContext) loadMarkup(chain []string) (*markup.Markup, error) {
	return r.env.Loader.LoadInherited(r.ctx, chain, r.env.Style, r.env.Locale)
}

func (r *RenderContext) renderRange(m *markup.Markup, start, end int, c Container) error {
	for i := start; i < end; i++ {
		e := m.At(i)
		if !e.IsTag() {
			r.out.WriteString(e.Raw)
			continue
		}
		t := e.Tag

		var err error
		switch {
		case t.IsComponent() && !t.IsClose():
			i, err = r.renderComponentAt(m, i, c)
		case t.Namespace == "" && t.Name == "head":
			if t.IsClose() && !r.headDone && r.capture == nil {
				r.out.WriteString(r.head)
				r.headDone = true
			}
			t.WriteTo(r.out, false)
		case t.IsWicket():
			i, err = r.renderWicketTag(m, i, c)
		default:
			t.WriteTo(r.out, r.strip())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *RenderContext) renderComponentAt(m *markup.Markup, i int, c Container) (int, error) {
	t := m.TagAt(i)
	ci := m.CloseIndex(i)
	if c == nil {
		return ci, dequeueError(m, t, "")
	}
	child := c.Get(t.ID)
	if child == nil {
		return ci, dequeueError(m, t, c.Path())
	}

	if rep, ok := child.(Repeater); ok {
		if !r.isRenderable(child) {
			return ci, nil
		}
		for _, item := range rep.Items() {
			if err := r.renderComponent(item, m, i); err != nil {
				return ci, err
			}
		}
		return ci, nil
	}
	return ci, r.renderComponent(child, m, i)
}

func (r *RenderContext) renderComponent(c Component, m *markup.Markup, i int) error {
	if r.capture != nil && r.capture == c {
		r.capStart = r.out.Len()
		defer func() {
			r.capEnd = r.out.Len()
			r.captured = true
		}()
	}

	src := m.TagAt(i)
	b := c.base()
	if !r.isRenderable(c) {
		if b.placeholder {
			r.out.WriteString("<" + src.Name + ` id="` + html.EscapeString(c.MarkupID()) + `" style="display:none"></` + src.Name + ">")
		}
		return nil
	}

	tag := src.Clone()
	if tr, ok := c.(TagRenderer); ok {
		tr.RenderTag(r, tag)
	}
	for _, bh := range c.Behaviors() {
		if tm, ok := bh.(BehaviorTagModifier); ok {
			tm.OnComponentTag(r, c, tag)
		}
	}
	if b.outputMarkupID {
		tag.SetAttr("id", c.MarkupID())
	}

	br, isBodyRenderer := c.(BodyRenderer)
	mp, isProvider := c.(markupProvider)
	if tag.IsOpenClose() && !tag.Void && (isBodyRenderer || isProvider) {
		tag.Type = markup.TagOpen
	}

	writeTag := !b.bodyOnly && !tag.IsWicket("container")
	if writeTag {
		tag.WriteTo(r.out, r.strip())
	}
	if tag.IsOpenClose() {
		return nil
	}

	body := m.Body(i)
	var err error
	switch {
	case isBodyRenderer:
		err = br.RenderBody(r, tag, body)
	case isProvider:
		err = r.renderAssociated(c, mp, body)
	default:
		cont, _ := c.(Container)
		err = r.renderRange(m, body.Start, body.End, cont)
	}
	if err != nil {
		return err
	}

	if writeTag {
		tag.CloseTag().WriteTo(r.out, false)
	}
	return nil
}

func (r *RenderContext) renderAssociated(c Component, mp markupProvider, outer markup.Fragment) error {
	am, body, err := mp.associatedMarkup(r)
	if err != nil {
		return err
	}
	if bo, ok := c.(bodyOwner); ok {
		r.frames = append(r.frames, bodyFrame{body: bo.borderBody(), frag: outer})
		defer func() { r.frames = r.frames[:len(r.frames)-1] }()
	}
	cont, _ := c.(Container)
	return r.renderRange(am, body.Start, body.End, cont)
}

func (r *RenderContext) renderWicketTag(m *markup.Markup, i int, c Container) (int, error) {
	t := m.TagAt(i)
	ci := m.CloseIndex(i)
	if t.IsClose() {
		if !r.strip() {
			t.WriteTo(r.out, false)
		}
		return i, nil
	}

	switch t.Name {
	case "head", "fragment", "remove":
		return ci, nil
	case "body":
		return ci, r.withBorderBody(func(f bodyFrame) error {
			if !r.isRenderable(f.body) {
				return nil
			}
			return r.RenderFragment(f.frag, f.body)
		})
	case "enclosure":
		return r.renderEnclosure(m, i, c)
	case "message":
		return r.renderMessage(m, i, c)
	}
	if !r.strip() {
		t.WriteTo(r.out, false)
	}
	return i, nil
}

// withBorderBody runs fn with the innermost border frame popped, so a
// <wicket:body> inside that body resolves to the next border out.
func (r *RenderContext) withBorderBody(fn func(f bodyFrame) error) error {
	n := len(r.frames)
	if n == 0 {
		return nil
	}
	f := r.frames[n-1]
	r.frames = r.frames[:n-1]
	err := fn(f)
	r.frames = append(r.frames, f)
	return err
}

func (r *RenderContext) renderEnclosure(m *markup.Markup, i int, c Container) (int, error) {
	t := m.TagAt(i)
	ci := m.CloseIndex(i)
	if ctrl := enclosureChild(m, i, c); ctrl != nil && !r.isRenderable(ctrl) {
		return ci, nil
	}
	if ci == i {
		return ci, nil
	}
	if !r.strip() {
		t.WriteTo(r.out, false)
	}
	if err := r.renderRange(m, i+1, ci, c); err != nil {
		return ci, err
	}
	if !r.strip() {
		m.TagAt(ci).WriteTo(r.out, false)
	}
	return ci, nil
}

// enclosureChild finds the component controlling an enclosure: the path in its
// child attribute, or the first component tag inside.
func enclosureChild(m *markup.Markup, i int, c Container) Component {
	if c == nil {
		return nil
	}
	if path, ok := m.TagAt(i).Attr("child"); ok && path != "" {
		var cur Component = c
		for _, id := range strings.Split(path, PathSeparator) {
			cont, ok := cur.(Container)
			if !ok {
				return nil
			}
			if cur = cont.Get(id); cur == nil {
				return nil
			}
		}
		return cur
	}
	for j := i + 1; j < m.CloseIndex(i); j++ {
		if t := m.TagAt(j); t != nil && t.IsComponent() && !t.IsClose() {
			return c.Get(t.ID)
		}
	}
	return nil
}

func (r *RenderContext) renderMessage(m *markup.Markup, i int, c Container) (int, error) {
	ci := m.CloseIndex(i)
	key, _ := m.TagAt(i).Attr("key")
	if text, ok := r.Localize(key); ok {
		r.out.WriteString(text)
		return ci, nil
	}
	if ci > i+1 {
		return ci, r.renderRange(m, i+1, ci, c)
	}
	r.WriteEscaped(key)
	return ci, nil
}

func dequeueError(m *markup.Markup, t *markup.Tag, parent string) error {
	path := t.ID
	if parent != "" {
		path = parent + PathSeparator + t.ID
	}
	return &DequeueError{ID: t.ID, Path: path, Source: m.Source(), Line: t.Line, Col: t.Col, Err: ErrUnresolvedTag}
}

type nopURLs struct{}

func (nopURLs) ListenerURL(Component, string) string                { return "" }
func (nopURLs) BehaviorURL(Component, int) string                   { return "" }
func (nopURLs) BookmarkableURL(string, *urls.PageParameters) string { return "" }
func (nopURLs) ResourceURL(string) string                           { return "" }
