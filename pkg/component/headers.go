package component

import (
	"strconv"

	"github.com/dmitrymomot/loom/pkg/header"
	"github.com/dmitrymomot/loom/pkg/markup"
)

// collectHeaders gathers head contributions of c and its visible descendants.
func (r *RenderContext) collectHeaders(c Component, resp *header.Response) error {
	if !r.isRenderable(c) {
		return nil
	}
	if r.env.HeaderStrategy == ParentFirst {
		if err := r.contribute(c, resp); err != nil {
			return err
		}
	}
	if cont, ok := c.(Container); ok {
		for _, ch := range cont.Children() {
			if err := r.collectHeaders(ch, resp); err != nil {
				return err
			}
		}
	}
	if r.env.HeaderStrategy == ChildFirst {
		return r.contribute(c, resp)
	}
	return nil
}

func (r *RenderContext) contribute(c Component, resp *header.Response) error {
	var m *markup.Markup
	switch c := c.(type) {
	case *Page:
		m = r.pageMarkup
	case markupProvider:
		am, _, err := c.associatedMarkup(r)
		if err != nil {
			return err
		}
		m = am
	}
	if m != nil {
		if err := contributeWicketHead(m, resp); err != nil {
			return err
		}
	}

	if hc, ok := c.(HeaderContributor); ok {
		if err := hc.RenderHead(resp); err != nil {
			return err
		}
	}
	for _, b := range c.Behaviors() {
		if hc, ok := b.(BehaviorHeaderContributor); ok {
			if err := hc.RenderHead(c, resp); err != nil {
				return err
			}
		}
	}
	return nil
}

// contributeWicketHead renders the <wicket:head> sections of m. Each section is
// keyed by its source and position, so a panel used many times adds it once.
func contributeWicketHead(m *markup.Markup, resp *header.Response) error {
	n := 0
	for i := 0; i < m.Len(); i++ {
		t := m.TagAt(i)
		if t == nil || t.IsClose() || !t.IsWicket("head") {
			continue
		}
		if body := m.Body(i); !body.IsEmpty() {
			if err := resp.Render(header.String(m.Source()+"#head"+strconv.Itoa(n), body.String())); err != nil {
				return err
			}
		}
		n++
		i = m.CloseIndex(i)
	}
	return nil
}
