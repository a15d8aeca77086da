package markup

import (
	"html"
	"slices"
	"strings"
)

// Namespace is the prefix of framework tags and attributes.
const Namespace = "wicket"

// IDAttr is the attribute binding a tag to a component.
const IDAttr = Namespace + ":id"

// TagType distinguishes open, close and open-close tags.
type TagType int

const (
	TagOpen TagType = iota
	TagClose
	TagOpenClose
)

// Attr is a single tag attribute. Order is preserved as written.
type Attr struct {
	Key string
	Val string
}

// Tag is a parsed tag the framework cares about: component tags, wicket tags
// and the document head. Tags inside a Markup are shared and must not be
// mutated; call Clone before changing attributes.
type Tag struct {
	Name      string
	Namespace string
	ID        string
	Attrs     []Attr
	Type      TagType
	Line      int
	Col       int
	// Void is set for HTML void elements written without "/>".
	Void bool

	pair int
}

// IsOpen reports an open tag.
func (t *Tag) IsOpen() bool { return t.Type == TagOpen }

// IsClose reports a close tag.
func (t *Tag) IsClose() bool { return t.Type == TagClose }

// IsOpenClose reports a tag without a body.
func (t *Tag) IsOpenClose() bool { return t.Type == TagOpenClose }

// IsWicket reports whether t is a wicket:<name> tag. Without names any wicket tag matches.
func (t *Tag) IsWicket(names ...string) bool {
	if t.Namespace != Namespace {
		return false
	}
	return len(names) == 0 || slices.Contains(names, t.Name)
}

// IsComponent reports whether the tag binds a component.
func (t *Tag) IsComponent() bool {
	if t.ID == "" {
		return false
	}
	return t.Namespace == "" || t.IsWicket("container")
}

// QualifiedName returns "ns:name" or just name.
func (t *Tag) QualifiedName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + ":" + t.Name
}

// Attr returns the value of the attribute key.
func (t *Tag) Attr(key string) (string, bool) {
	for _, a := range t.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute.
func (t *Tag) SetAttr(key, val string) {
	for i := range t.Attrs {
		if t.Attrs[i].Key == key {
			t.Attrs[i].Val = val
			return
		}
	}
	t.Attrs = append(t.Attrs, Attr{Key: key, Val: val})
}

// AppendAttr appends val to an existing attribute separated by sep.
func (t *Tag) AppendAttr(key, val, sep string) {
	if cur, ok := t.Attr(key); ok && cur != "" {
		t.SetAttr(key, cur+sep+val)
		return
	}
	t.SetAttr(key, val)
}

// RemoveAttr deletes an attribute.
func (t *Tag) RemoveAttr(key string) {
	t.Attrs = slices.DeleteFunc(t.Attrs, func(a Attr) bool { return a.Key == key })
}

// Clone returns a mutable copy.
func (t *Tag) Clone() *Tag {
	c := *t
	c.Attrs = slices.Clone(t.Attrs)
	return &c
}

// String renders the tag with all attributes.
func (t *Tag) String() string {
	var b strings.Builder
	t.WriteTo(&b, false)
	return b.String()
}

// WriteTo renders the tag. With strip set, wicket attributes are omitted.
func (t *Tag) WriteTo(b *strings.Builder, strip bool) {
	b.WriteByte('<')
	if t.Type == TagClose {
		b.WriteByte('/')
		b.WriteString(t.QualifiedName())
		b.WriteByte('>')
		return
	}
	b.WriteString(t.QualifiedName())
	for _, a := range t.Attrs {
		if strip && strings.HasPrefix(a.Key, Namespace+":") {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteByte('"')
	}
	if t.Type == TagOpenClose && !t.Void {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
}

// CloseTag returns the close tag matching t.
func (t *Tag) CloseTag() *Tag {
	return &Tag{Name: t.Name, Namespace: t.Namespace, ID: t.ID, Type: TagClose, pair: -1}
}

// OpenVariant returns a copy of an open-close tag turned into an open tag.
func (t *Tag) OpenVariant() *Tag {
	c := t.Clone()
	c.Type = TagOpen
	c.Void = false
	return c
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "param": true,
	"source": true, "track": true, "wbr": true,
}

// IsVoidElement reports whether name is an HTML element that never has a body.
func IsVoidElement(name string) bool {
	return voidElements[name]
}
