package component

import (
	"slices"
	"strconv"
	"strings"
)

// PathSeparator joins component ids into a page relative path.
const PathSeparator = ":"

// Component is a node of the component tree. Implementations embed Base,
// or a type that embeds it, such as ContainerBase or Panel.
type Component interface {
	ID() string
	Parent() Container
	Path() string
	Page() *Page
	Model() Model
	IsVisible() bool
	IsEnabled() bool
	IsVisibleInHierarchy() bool
	IsEnabledInHierarchy() bool
	Behaviors() []Behavior
	MarkupID() string

	base() *Base
}

// Base carries the state every component has. The zero value is not usable;
// embed it and call Init, or use a constructor of this package.
type Base struct {
	id        string
	parent    Container
	model     Model
	behaviors []Behavior

	markupID       string
	outputMarkupID bool
	placeholder    bool
	bodyOnly       bool
	hidden         bool
	disabled       bool
}

// Init sets the id of a component embedding Base directly.
func (b *Base) Init(id string) { b.id = id }

func (b *Base) base() *Base { return b }

// ID returns the id, unique among siblings.
func (b *Base) ID() string { return b.id }

// Parent returns the container this component was added to, or nil.
func (b *Base) Parent() Container { return b.parent }

// Page returns the page the component is attached to, or nil when detached.
func (b *Base) Page() *Page {
	for p := b.parent; p != nil; p = p.Parent() {
		if pg, ok := p.(interface{ page() *Page }); ok {
			return pg.page()
		}
	}
	return nil
}

// Path returns the colon separated ids from below the page down to this component.
func (b *Base) Path() string {
	ids := []string{b.id}
	for p := b.parent; p != nil; p = p.Parent() {
		if _, ok := p.(interface{ page() *Page }); ok {
			break
		}
		ids = append(ids, p.ID())
	}
	slices.Reverse(ids)
	return strings.Join(ids, PathSeparator)
}

// Model returns the component model. It may be nil.
func (b *Base) Model() Model { return b.model }

// SetModel replaces the model.
func (b *Base) SetModel(m Model) {
	old := b.model
	b.record(func() { b.model = old })
	b.model = m
}

// ModelObject returns the model object or nil.
func (b *Base) ModelObject() any {
	if b.model == nil {
		return nil
	}
	return b.model.Object()
}

// SetModelObject sets the model object, creating a ValueModel when needed.
func (b *Base) SetModelObject(v any) {
	if b.model == nil {
		b.SetModel(Of(v))
		return
	}
	old := b.model.Object()
	m := b.model
	b.record(func() { m.SetObject(old) })
	m.SetObject(v)
}

// IsVisible reports the component's own visibility flag.
func (b *Base) IsVisible() bool { return !b.hidden }

// SetVisible changes visibility.
func (b *Base) SetVisible(v bool) {
	if b.hidden == !v {
		return
	}
	old := b.hidden
	b.record(func() { b.hidden = old })
	b.hidden = !v
}

// IsEnabled reports the component's own enabled flag.
func (b *Base) IsEnabled() bool { return !b.disabled }

// SetEnabled enables or disables the component. Disabled components do not
// accept listener calls.
func (b *Base) SetEnabled(v bool) {
	if b.disabled == !v {
		return
	}
	old := b.disabled
	b.record(func() { b.disabled = old })
	b.disabled = !v
}

// IsVisibleInHierarchy reports whether the component and all its ancestors are visible.
func (b *Base) IsVisibleInHierarchy() bool {
	if b.hidden {
		return false
	}
	for p := b.parent; p != nil; p = p.Parent() {
		if !p.IsVisible() {
			return false
		}
	}
	return true
}

// IsEnabledInHierarchy reports whether the component and all its ancestors are enabled.
func (b *Base) IsEnabledInHierarchy() bool {
	if b.disabled {
		return false
	}
	for p := b.parent; p != nil; p = p.Parent() {
		if !p.IsEnabled() {
			return false
		}
	}
	return true
}

// Behaviors returns the attached behaviors.
func (b *Base) Behaviors() []Behavior { return b.behaviors }

// MarkupID returns the DOM id written when OutputMarkupID is set. Unless set
// explicitly it is derived from the id and a page wide counter.
func (b *Base) MarkupID() string {
	if b.markupID != "" {
		return b.markupID
	}
	pg := b.Page()
	if pg == nil {
		return b.id
	}
	b.markupID = b.id + strconv.Itoa(pg.nextSeq())
	return b.markupID
}

// SetMarkupID sets the DOM id and turns on OutputMarkupID.
func (b *Base) SetMarkupID(id string) {
	b.markupID = id
	b.outputMarkupID = true
}

// SetOutputMarkupID writes the id attribute on render.
func (b *Base) SetOutputMarkupID(v bool) { b.outputMarkupID = v }

// SetOutputPlaceholderTag renders a hidden placeholder tag while the component
// is invisible, so partial updates can find it later.
func (b *Base) SetOutputPlaceholderTag(v bool) {
	b.placeholder = v
	if v {
		b.outputMarkupID = true
	}
}

// SetRenderBodyOnly renders the body without the component tag.
func (b *Base) SetRenderBodyOnly(v bool) { b.bodyOnly = v }

// Error reports a feedback message for this component on its page.
func (b *Base) Error(msg string) { b.feedback(LevelError, msg) }

// Info reports an informational feedback message.
func (b *Base) Info(msg string) { b.feedback(LevelInfo, msg) }

func (b *Base) feedback(level Level, msg string) {
	if pg := b.Page(); pg != nil {
		pg.addFeedback(FeedbackMessage{Level: level, Reporter: b.Path(), Text: msg})
	}
}

// record registers an undo step with the page when it tracks versions.
func (b *Base) record(undo func()) {
	if pg := b.Page(); pg != nil {
		pg.RecordChange(ChangeFunc(undo))
	}
}
