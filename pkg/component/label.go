package component

import (
	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"

	"github.com/dmitrymomot/loom/pkg/markup"
	"github.com/dmitrymomot/loom/pkg/sanitizer"
)

// Label replaces the body of its tag with the model object.
type Label struct {
	Base
	escape bool
	policy *bluemonday.Policy
}

// NewLabel creates a label. The model object is HTML escaped unless
// EscapeModel(false) is set.
func NewLabel(id string, m Model) *Label {
	l := &Label{escape: true}
	l.Init(id)
	l.model = m
	return l
}

// EscapeModel controls escaping. Unescaped output is still passed through the
// safe HTML policy.
func (l *Label) EscapeModel(v bool) *Label {
	l.escape = v
	return l
}

// Policy replaces the safe HTML policy applied to unescaped output.
func (l *Label) Policy(p *bluemonday.Policy) *Label {
	l.policy = p
	return l
}

// RenderBody implements BodyRenderer.
func (l *Label) RenderBody(r *RenderContext, _ *markup.Tag, _ markup.Fragment) error {
	s := String(l.model)
	if l.escape {
		r.WriteEscaped(s)
		return nil
	}
	r.WriteString(sanitizer.SanitizeWith(s, l.policy))
	return nil
}

// MarkdownLabel renders its model object as markdown.
type MarkdownLabel struct {
	Base
}

// NewMarkdownLabel creates a label rendering markdown.
func NewMarkdownLabel(id string, m Model) *MarkdownLabel {
	l := &MarkdownLabel{}
	l.Init(id)
	l.model = m
	return l
}

// RenderBody implements BodyRenderer.
func (l *MarkdownLabel) RenderBody(r *RenderContext, _ *markup.Tag, _ markup.Fragment) error {
	out, err := sanitizer.Markdown(String(l.model))
	if err != nil {
		return err
	}
	r.WriteString(out)
	return nil
}

// Templ embeds a templ component as the body of a tag.
type Templ struct {
	Base
	view templ.Component
}

// NewTempl creates a component rendering view.
func NewTempl(id string, view templ.Component) *Templ {
	t := &Templ{view: view}
	t.Init(id)
	return t
}

// RenderBody implements BodyRenderer.
func (t *Templ) RenderBody(r *RenderContext, _ *markup.Tag, _ markup.Fragment) error {
	if t.view == nil {
		return nil
	}
	return t.view.Render(r.Context(), r.out)
}
