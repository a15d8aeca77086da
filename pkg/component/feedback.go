package component

import (
	"strings"

	"github.com/dmitrymomot/loom/pkg/markup"
)

// Level is the severity of a feedback message.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "info"
}

// FeedbackMessage is a message reported by a component for the next render.
type FeedbackMessage struct {
	Level    Level
	Reporter string // component path
	Text     string
}

func (p *Page) addFeedback(m FeedbackMessage) {
	p.feedback = append(p.feedback, m)
}

// Feedback returns messages reported since the last render.
func (p *Page) Feedback() []FeedbackMessage { return p.feedback }

// HasErrors reports whether an error message is pending.
func (p *Page) HasErrors() bool {
	for _, m := range p.feedback {
		if m.Level == LevelError {
			return true
		}
	}
	return false
}

// FeedbackPanel lists pending feedback messages.
type FeedbackPanel struct {
	Base
	scope Container
}

// NewFeedbackPanel creates a panel listing all messages of the page.
func NewFeedbackPanel(id string) *FeedbackPanel {
	f := &FeedbackPanel{}
	f.Init(id)
	return f
}

// Scope limits the panel to messages reported by c and its descendants.
func (f *FeedbackPanel) Scope(c Container) *FeedbackPanel {
	f.scope = c
	return f
}

// Messages returns the messages the panel shows.
func (f *FeedbackPanel) Messages() []FeedbackMessage {
	pg := f.Page()
	if pg == nil {
		return nil
	}
	if f.scope == nil {
		return pg.feedback
	}
	prefix := f.scope.Path()
	var out []FeedbackMessage
	for _, m := range pg.feedback {
		if prefix == "" || m.Reporter == prefix || strings.HasPrefix(m.Reporter, prefix+PathSeparator) {
			out = append(out, m)
		}
	}
	return out
}

// RenderBody implements BodyRenderer.
func (f *FeedbackPanel) RenderBody(r *RenderContext, _ *markup.Tag, _ markup.Fragment) error {
	msgs := f.Messages()
	if len(msgs) == 0 {
		return nil
	}
	r.WriteString(`<ul class="feedback">`)
	for _, m := range msgs {
		r.WriteString(`<li class="feedback-` + m.Level.String() + `">`)
		r.WriteEscaped(m.Text)
		r.WriteString("</li>")
	}
	r.WriteString("</ul>")
	return nil
}
