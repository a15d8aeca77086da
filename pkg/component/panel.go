package component

import (
	"errors"

	"github.com/dmitrymomot/loom/pkg/markup"
)

// Panel is a reusable container rendering the <wicket:panel> section of its
// own markup file in place of the body of its tag.
type Panel struct {
	ContainerBase
	chain []string
}

// NewPanel creates a panel whose markup is loaded for class. Base classes for
// markup inheritance may follow, nearest first.
func NewPanel(id, class string, extends ...string) *Panel {
	p := &Panel{chain: append([]string{class}, extends...)}
	p.InitContainer(p, id)
	return p
}

func (p *Panel) isQueueRegion() bool { return true }

func (p *Panel) associatedMarkup(r *RenderContext) (*markup.Markup, markup.Fragment, error) {
	return sectionOf(r, p.chain, "panel", "")
}

// Border wraps the markup between its tags with its own markup. The wrapped
// markup renders at <wicket:body> through the BorderBody child. Children added
// to the border go to the body, so they resolve against the wrapped markup.
type Border struct {
	ContainerBase
	chain []string
	body  *BorderBody
}

// BorderBody holds the components of the markup a border wraps.
type BorderBody struct {
	ContainerBase
}

// NewBorder creates a border whose markup is loaded for class.
func NewBorder(id, class string, extends ...string) *Border {
	b := &Border{chain: append([]string{class}, extends...)}
	b.InitContainer(b, id)
	b.body = &BorderBody{}
	b.body.InitContainer(b.body, id+"_body")
	b.ContainerBase.attach(b.body)
	return b
}

func (b *Border) isQueueRegion() bool { return true }

func (b *Border) borderBody() *BorderBody { return b.body }

// Body returns the container for the wrapped markup.
func (b *Border) Body() *BorderBody { return b.body }

// Add adds children to the border body.
func (b *Border) Add(children ...Component) error { return b.body.Add(children...) }

// MustAdd adds children to the border body and panics on error.
func (b *Border) MustAdd(children ...Component) { b.body.MustAdd(children...) }

// Queue queues children for the wrapped markup.
func (b *Border) Queue(children ...Component) error { return b.body.Queue(children...) }

// AddToBorder adds children referenced by the border's own markup.
func (b *Border) AddToBorder(children ...Component) error {
	return b.ContainerBase.Add(children...)
}

// QueueToBorder queues children for the border's own markup.
func (b *Border) QueueToBorder(children ...Component) error {
	return b.ContainerBase.Queue(children...)
}

func (b *Border) associatedMarkup(r *RenderContext) (*markup.Markup, markup.Fragment, error) {
	return sectionOf(r, b.chain, "border", "")
}

// bodyOwner is implemented by borders.
type bodyOwner interface {
	borderBody() *BorderBody
}

// Fragment renders a <wicket:fragment> section declared in the markup of
// another container, or of the page when no provider is set.
type Fragment struct {
	ContainerBase
	markupID string
	provider Container
}

// NewFragment creates a fragment rendering the section markupID. provider is
// the container whose markup declares it; nil means the page.
func NewFragment(id, markupID string, provider Container) *Fragment {
	f := &Fragment{markupID: markupID, provider: provider}
	f.InitContainer(f, id)
	return f
}

func (f *Fragment) isQueueRegion() bool { return true }

func (f *Fragment) associatedMarkup(r *RenderContext) (*markup.Markup, markup.Fragment, error) {
	var m *markup.Markup
	switch p := f.provider.(type) {
	case nil:
		m = r.pageMarkup
	case *Page:
		m = r.pageMarkup
	case interface{ markupChain() []string }:
		am, err := r.loadMarkup(p.markupChain())
		if err != nil {
			return nil, markup.Fragment{}, err
		}
		m = am
	default:
		return nil, markup.Fragment{}, errors.Join(ErrNoAssociatedMarkup, errors.New(f.markupID))
	}
	i, ok := m.FindWicketTag("fragment", f.markupID)
	if !ok {
		return nil, markup.Fragment{}, errors.Join(ErrNoAssociatedMarkup, errors.New(m.Source()+": fragment "+f.markupID))
	}
	return m, m.Body(i), nil
}

func (p *Panel) markupChain() []string  { return p.chain }
func (b *Border) markupChain() []string { return b.chain }

func sectionOf(r *RenderContext, chain []string, tag, id string) (*markup.Markup, markup.Fragment, error) {
	m, err := r.loadMarkup(chain)
	if err != nil {
		return nil, markup.Fragment{}, err
	}
	i, ok := m.FindWicketTag(tag, id)
	if !ok {
		return nil, markup.Fragment{}, errors.Join(ErrNoAssociatedMarkup, errors.New(m.Source()+": missing wicket:"+tag))
	}
	return m, m.Body(i), nil
}
