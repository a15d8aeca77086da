package markup

import "slices"

// Merge applies markup inheritance: the body of <wicket:extend> in derived replaces
// <wicket:child> in base. <wicket:head> sections of derived are carried over so
// their header contributions survive.
func Merge(base, derived *Markup) (*Markup, error) {
	childIdx, ok := base.FindWicketTag("child", "")
	if !ok {
		return nil, &ParseError{Err: ErrNoChildTag, Source: base.source, Tag: "wicket:child"}
	}
	extIdx, ok := derived.FindWicketTag("extend", "")
	if !ok {
		return nil, &ParseError{Err: ErrNoExtendTag, Source: derived.source, Tag: "wicket:extend"}
	}

	extEnd := derived.CloseIndex(extIdx)
	var heads []Element
	for i := 0; i < derived.Len(); i++ {
		if i >= extIdx && i <= extEnd {
			continue
		}
		t := derived.TagAt(i)
		if t == nil || !t.IsWicket("head") || t.Type == TagClose {
			continue
		}
		end := derived.CloseIndex(i)
		heads = append(heads, derived.elements[i:end+1]...)
		i = end
	}

	body := derived.Body(extIdx)
	childEnd := base.CloseIndex(childIdx)

	out := make([]Element, 0, base.Len()+body.End-body.Start+len(heads))
	out = append(out, base.elements[:childIdx]...)
	out = append(out, heads...)
	out = append(out, derived.elements[body.Start:body.End]...)
	out = append(out, base.elements[childEnd+1:]...)

	return newMarkup(derived.source, slices.Clip(out))
}
