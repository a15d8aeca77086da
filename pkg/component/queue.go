package component

import (
	"github.com/dmitrymomot/loom/pkg/markup"
)

// queueRegion is implemented by containers that own a markup file or section.
// Queued components are searched upward only until such a container.
type queueRegion interface {
	isQueueRegion() bool
}

func isRegion(c Container) bool {
	r, ok := c.(queueRegion)
	return ok && r.isQueueRegion()
}

// prepareRange walks component tags in markup[start:end] with c as their
// container. Tags without an added child take a queued component found on c
// or an ancestor within the same region, so the final hierarchy follows the
// markup. Visible components get OnBeforeRender on the way down.
func (r *RenderContext) prepareRange(m *markup.Markup, start, end int, c Container, visible bool) error {
	for i := start; i < end; i++ {
		t := m.TagAt(i)
		if t == nil || t.IsClose() {
			continue
		}
		switch {
		case t.IsWicket("head", "fragment"):
			i = m.CloseIndex(i)
		case t.IsWicket("body"):
			err := r.withBorderBody(func(f bodyFrame) error {
				if f.frag.IsEmpty() {
					return nil
				}
				vis := visible && r.isRenderable(f.body)
				return r.prepareRange(f.frag.Markup, f.frag.Start, f.frag.End, f.body, vis)
			})
			if err != nil {
				return err
			}
			i = m.CloseIndex(i)
		case t.IsComponent():
			child, err := resolve(m, t, c)
			if err != nil {
				return err
			}
			if err := r.prepareComponent(child, m, i, visible); err != nil {
				return err
			}
			i = m.CloseIndex(i)
		}
	}
	return nil
}

// resolve returns the child of c bound to tag t, dequeuing it if needed.
func resolve(m *markup.Markup, t *markup.Tag, c Container) (Component, error) {
	if c == nil {
		return nil, dequeueError(m, t, "")
	}
	if ch := c.Get(t.ID); ch != nil {
		return ch, nil
	}
	for q := c; q != nil; q = q.Parent() {
		if ch := q.container().takeQueued(t.ID); ch != nil {
			c.container().attach(ch)
			return ch, nil
		}
		if isRegion(q) {
			break
		}
	}
	return nil, dequeueError(m, t, c.Path())
}

func (r *RenderContext) prepareComponent(c Component, m *markup.Markup, i int, visible bool) error {
	vis := visible && r.isRenderable(c)
	if vis {
		if br, ok := c.(BeforeRenderer); ok {
			if err := br.OnBeforeRender(); err != nil {
				return err
			}
		}
	}

	body := m.Body(i)
	if rep, ok := c.(Repeater); ok {
		for _, item := range rep.Items() {
			ivis := vis && r.isRenderable(item)
			if ivis {
				if br, ok := item.(BeforeRenderer); ok {
					if err := br.OnBeforeRender(); err != nil {
						return err
					}
				}
			}
			if err := r.prepareRange(m, body.Start, body.End, item, ivis); err != nil {
				return err
			}
		}
		return nil
	}

	if mp, ok := c.(markupProvider); ok {
		am, ab, err := mp.associatedMarkup(r)
		if err != nil {
			return err
		}
		if bo, ok := c.(bodyOwner); ok {
			r.frames = append(r.frames, bodyFrame{body: bo.borderBody(), frag: body})
			defer func() { r.frames = r.frames[:len(r.frames)-1] }()
		}
		cont, _ := c.(Container)
		return r.prepareRange(am, ab.Start, ab.End, cont, vis)
	}

	if _, ok := c.(BodyRenderer); ok {
		return nil
	}
	if cont, ok := c.(Container); ok {
		return r.prepareRange(m, body.Start, body.End, cont, vis)
	}
	return nil
}
