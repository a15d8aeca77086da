package markup

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// openElement tracks every open tag so close tags of component tags can be
// matched even when plain HTML in between is not closed explicitly.
type openElement struct {
	tag  *Tag
	name string
}

type parser struct {
	z        *html.Tokenizer
	source   string
	elements []Element
	stack    []openElement
	line     int
	col      int
	removing int
}

// ParseString parses markup from a string.
func ParseString(s, source string) (*Markup, error) {
	return Parse(strings.NewReader(s), source)
}

// Parse reads HTML and returns the framework's view of it: raw markup interleaved
// with component tags, wicket tags and the document head.
func Parse(r io.Reader, source string) (*Markup, error) {
	p := &parser{
		z:      html.NewTokenizer(r),
		source: source,
		line:   1,
		col:    1,
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return newMarkup(source, p.elements)
}

func (p *parser) run() error {
	for {
		tt := p.z.Next()
		if tt == html.ErrorToken {
			if errors.Is(p.z.Err(), io.EOF) {
				break
			}
			return p.z.Err()
		}

		raw := string(p.z.Raw())
		line, col := p.line, p.col
		p.advance(raw)

		var err error
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			err = p.startTag(raw, tt == html.SelfClosingTagToken, line, col)
		case html.EndTagToken:
			err = p.endTag(raw, line, col)
		default:
			p.emitRaw(raw)
		}
		if err != nil {
			return err
		}
	}

	for i := len(p.stack) - 1; i >= 0; i-- {
		if t := p.stack[i].tag; t != nil {
			return &ParseError{Err: ErrUnclosedTag, Source: p.source, Tag: t.QualifiedName(), Line: t.Line, Col: t.Col}
		}
	}
	if p.removing > 0 {
		return &ParseError{Err: ErrUnclosedTag, Source: p.source, Tag: "wicket:remove", Line: p.line, Col: p.col}
	}
	return nil
}

func (p *parser) advance(raw string) {
	for _, r := range raw {
		if r == '\n' {
			p.line++
			p.col = 1
			continue
		}
		p.col++
	}
}

func (p *parser) emitRaw(raw string) {
	if p.removing > 0 {
		return
	}
	p.elements = append(p.elements, Element{Raw: raw})
}

func (p *parser) startTag(raw string, selfClosing bool, line, col int) error {
	name, hasAttr := p.z.TagName()
	tagName := string(name)

	if tagName == Namespace+":remove" {
		if !selfClosing {
			p.removing++
		}
		return nil
	}
	if p.removing > 0 {
		return nil
	}

	var attrs []Attr
	for hasAttr {
		var k, v []byte
		k, v, hasAttr = p.z.TagAttr()
		attrs = append(attrs, Attr{Key: string(k), Val: string(v)})
	}

	t := &Tag{Attrs: attrs, Line: line, Col: col, Type: TagOpen, pair: -1}
	if local, ok := strings.CutPrefix(tagName, Namespace+":"); ok {
		t.Namespace = Namespace
		t.Name = local
	} else {
		t.Name = tagName
	}

	id, hasID := t.Attr(IDAttr)
	if hasID && id == "" {
		return &ParseError{Err: ErrEmptyID, Source: p.source, Tag: tagName, Line: line, Col: col}
	}
	if hasID && (t.Namespace == "" || t.Name == "container") {
		t.ID = id
	}

	interesting := t.ID != "" || t.Namespace == Namespace || (t.Namespace == "" && t.Name == "head")
	void := t.Namespace == "" && IsVoidElement(t.Name)

	switch {
	case selfClosing:
		if !interesting {
			p.emitRaw(raw)
			return nil
		}
		t.Type = TagOpenClose
		p.elements = append(p.elements, Element{Tag: t})
	case void:
		if !interesting {
			p.emitRaw(raw)
			return nil
		}
		t.Type = TagOpenClose
		t.Void = true
		p.elements = append(p.elements, Element{Tag: t})
	case interesting:
		p.elements = append(p.elements, Element{Tag: t})
		p.stack = append(p.stack, openElement{tag: t, name: tagName})
	default:
		p.emitRaw(raw)
		p.stack = append(p.stack, openElement{name: tagName})
	}
	return nil
}

func (p *parser) endTag(raw string, line, col int) error {
	name, _ := p.z.TagName()
	tagName := string(name)

	if tagName == Namespace+":remove" {
		if p.removing == 0 {
			return &ParseError{Err: ErrUnexpectedCloseTag, Source: p.source, Tag: tagName, Line: line, Col: col}
		}
		p.removing--
		return nil
	}
	if p.removing > 0 {
		return nil
	}

	k := -1
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].name == tagName {
			k = i
			break
		}
	}

	if k < 0 {
		if strings.HasPrefix(tagName, Namespace+":") {
			return &ParseError{Err: ErrUnexpectedCloseTag, Source: p.source, Tag: tagName, Line: line, Col: col}
		}
		p.emitRaw(raw)
		return nil
	}

	// plain HTML may be closed implicitly, component tags may not
	for i := len(p.stack) - 1; i > k; i-- {
		if t := p.stack[i].tag; t != nil {
			return &ParseError{Err: ErrUnclosedTag, Source: p.source, Tag: t.QualifiedName(), Line: t.Line, Col: t.Col}
		}
	}

	open := p.stack[k]
	p.stack = p.stack[:k]

	if open.tag == nil {
		p.emitRaw(raw)
		return nil
	}
	closeTag := open.tag.CloseTag()
	closeTag.Line, closeTag.Col = line, col
	p.elements = append(p.elements, Element{Tag: closeTag})
	return nil
}
