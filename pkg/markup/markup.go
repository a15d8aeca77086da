package markup

import "strings"

// Element is either raw markup or a tag.
type Element struct {
	Tag *Tag
	Raw string
}

// IsTag reports whether the element is a tag.
func (e Element) IsTag() bool { return e.Tag != nil }

// Markup is an immutable sequence of raw markup and tags.
// Open tags know the index of their close tag.
type Markup struct {
	source   string
	elements []Element
}

// Source returns the resource name the markup was parsed from.
func (m *Markup) Source() string { return m.source }

// Len returns the number of elements.
func (m *Markup) Len() int { return len(m.elements) }

// At returns the element at i.
func (m *Markup) At(i int) Element { return m.elements[i] }

// TagAt returns the tag at i or nil for raw elements.
func (m *Markup) TagAt(i int) *Tag {
	if i < 0 || i >= len(m.elements) {
		return nil
	}
	return m.elements[i].Tag
}

// CloseIndex returns the index of the close tag of the tag at i.
// Open-close tags and raw elements return i.
func (m *Markup) CloseIndex(i int) int {
	t := m.TagAt(i)
	if t == nil || t.Type != TagOpen || t.pair < 0 {
		return i
	}
	return t.pair
}

// Find returns the index of the first component tag with the given id.
func (m *Markup) Find(id string) (int, bool) {
	for i, e := range m.elements {
		if e.Tag != nil && e.Tag.Type != TagClose && e.Tag.IsComponent() && e.Tag.ID == id {
			return i, true
		}
	}
	return 0, false
}

// FindWicketTag returns the first wicket:<name> open tag. If id is not empty the
// tag's wicket:id must match, as for <wicket:fragment wicket:id="...">.
func (m *Markup) FindWicketTag(name, id string) (int, bool) {
	for i, e := range m.elements {
		t := e.Tag
		if t == nil || t.Type == TagClose || !t.IsWicket(name) {
			continue
		}
		if id != "" {
			if v, _ := t.Attr(IDAttr); v != id {
				continue
			}
		}
		return i, true
	}
	return 0, false
}

// Whole returns a fragment spanning the entire markup.
func (m *Markup) Whole() Fragment {
	return Fragment{Markup: m, Start: 0, End: len(m.elements)}
}

// TagFragment returns the fragment of the tag at i including its close tag.
func (m *Markup) TagFragment(i int) Fragment {
	return Fragment{Markup: m, Start: i, End: m.CloseIndex(i) + 1}
}

// Body returns the fragment between the tag at i and its close tag.
func (m *Markup) Body(i int) Fragment {
	end := m.CloseIndex(i)
	if end == i {
		return Fragment{Markup: m, Start: i + 1, End: i + 1}
	}
	return Fragment{Markup: m, Start: i + 1, End: end}
}

// String re-serializes the markup.
func (m *Markup) String() string {
	return m.Whole().String()
}

// Fragment is a half-open range [Start, End) of a Markup.
type Fragment struct {
	Markup *Markup
	Start  int
	End    int
}

// IsEmpty reports whether the fragment has no elements.
func (f Fragment) IsEmpty() bool { return f.Markup == nil || f.End <= f.Start }

// String re-serializes the fragment.
func (f Fragment) String() string {
	var b strings.Builder
	for i := f.Start; i < f.End; i++ {
		e := f.Markup.elements[i]
		if e.Tag != nil {
			e.Tag.WriteTo(&b, false)
			continue
		}
		b.WriteString(e.Raw)
	}
	return b.String()
}

// newMarkup links open and close tags and validates nesting.
func newMarkup(source string, elements []Element) (*Markup, error) {
	m := &Markup{source: source, elements: compact(elements)}
	if err := m.link(); err != nil {
		return nil, err
	}
	return m, nil
}

// compact merges adjacent raw elements and drops empty ones.
func compact(in []Element) []Element {
	out := make([]Element, 0, len(in))
	for _, e := range in {
		if e.Tag == nil {
			if e.Raw == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1].Tag == nil {
				out[n-1].Raw += e.Raw
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func (m *Markup) link() error {
	var stack []int
	for i := range m.elements {
		t := m.elements[i].Tag
		if t == nil {
			continue
		}
		// tags are shared with the source markup on merge; relink on copies
		c := *t
		m.elements[i].Tag = &c
		t = &c
		t.pair = -1
		switch t.Type {
		case TagOpen:
			stack = append(stack, i)
		case TagClose:
			if len(stack) == 0 {
				return m.errorAt(t, ErrUnexpectedCloseTag)
			}
			openIdx := stack[len(stack)-1]
			open := m.elements[openIdx].Tag
			if open.QualifiedName() != t.QualifiedName() {
				return m.errorAt(open, ErrUnclosedTag)
			}
			stack = stack[:len(stack)-1]
			open.pair = i
			t.pair = openIdx
			t.ID = open.ID
		}
	}
	if len(stack) > 0 {
		return m.errorAt(m.elements[stack[len(stack)-1]].Tag, ErrUnclosedTag)
	}
	return nil
}

func (m *Markup) errorAt(t *Tag, err error) error {
	return &ParseError{Err: err, Source: m.source, Tag: t.QualifiedName(), Line: t.Line, Col: t.Col}
}
