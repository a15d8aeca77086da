package component

import (
	"slices"

	"github.com/dmitrymomot/loom/pkg/header"
	"github.com/dmitrymomot/loom/pkg/markup"
)

// Behavior adds tag attributes, header items or request handling to a
// component without subclassing it. Behaviors implement any of
// BehaviorTagModifier, BehaviorHeaderContributor and BehaviorListener.
type Behavior interface {
	Bind(c Component)
}

// BehaviorTagModifier changes the tag of the component it is bound to.
type BehaviorTagModifier interface {
	OnComponentTag(r *RenderContext, c Component, tag *markup.Tag)
}

// BehaviorHeaderContributor adds head items for the component it is bound to.
type BehaviorHeaderContributor interface {
	RenderHead(c Component, resp *header.Response) error
}

// AddBehavior attaches behaviors to c and binds them. A behavior id is its
// index in c.Behaviors().
func AddBehavior(c Component, bs ...Behavior) {
	b := c.base()
	for _, bh := range bs {
		if bh == nil {
			continue
		}
		b.behaviors = append(b.behaviors, bh)
		bh.Bind(c)
	}
}

// BehaviorID returns the index of b on c, or -1.
func BehaviorID(c Component, b Behavior) int {
	return slices.Index(c.Behaviors(), b)
}

// AttributeModifier sets a tag attribute from a model on every render.
type AttributeModifier struct {
	Attr  string
	Value Model
	// Separator appends to an existing value when not empty.
	Separator string
}

// Attr creates a modifier replacing attr.
func Attr(attr string, value Model) *AttributeModifier {
	return &AttributeModifier{Attr: attr, Value: value}
}

// AppendAttr creates a modifier appending to attr, for example a CSS class.
func AppendAttr(attr string, value Model, sep string) *AttributeModifier {
	return &AttributeModifier{Attr: attr, Value: value, Separator: sep}
}

func (m *AttributeModifier) Bind(Component) {}

func (m *AttributeModifier) OnComponentTag(_ *RenderContext, _ Component, tag *markup.Tag) {
	v := String(m.Value)
	if m.Separator != "" {
		if v != "" {
			tag.AppendAttr(m.Attr, v, m.Separator)
		}
		return
	}
	tag.SetAttr(m.Attr, v)
}

// EventBehavior answers a DOM event through an htmx request to the bound
// component, replacing it with its fresh rendering.
type EventBehavior struct {
	Event   string
	OnEvent func(c Component, cycle Cycle) error
	// Target is the hx-target selector. Default: the component itself.
	Target string
	// Stateless marks the behavior as not requiring the page to be stored.
	Stateless bool

	owner Component
}

// OnEvent creates an EventBehavior for event.
func OnEvent(event string, fn func(c Component, cycle Cycle) error) *EventBehavior {
	return &EventBehavior{Event: event, OnEvent: fn}
}

func (b *EventBehavior) Bind(c Component) {
	b.owner = c
	c.base().SetOutputMarkupID(true)
}

func (b *EventBehavior) OnComponentTag(r *RenderContext, c Component, tag *markup.Tag) {
	id := BehaviorID(c, b)
	if id < 0 {
		return
	}
	method := "hx-get"
	if tag.Name == "form" {
		method = "hx-post"
	}
	tag.SetAttr(method, r.URLs().BehaviorURL(c, id))
	tag.SetAttr("hx-trigger", b.Event)
	target := b.Target
	if target == "" {
		target = "#" + c.MarkupID()
	}
	tag.SetAttr("hx-target", target)
	tag.SetAttr("hx-swap", "outerHTML")
}

func (b *EventBehavior) OnRequest(c Component, cycle Cycle) error {
	if b.OnEvent == nil {
		return nil
	}
	return b.OnEvent(c, cycle)
}

func (b *EventBehavior) StatelessHint() bool { return b.Stateless }

// Owner returns the component the behavior is bound to.
func (b *EventBehavior) Owner() Component { return b.owner }
