package coding

import (
	"errors"
	"strings"

	"github.com/dmitrymomot/loom/pkg/urls"
)

// Mount maps a path template to a bookmarkable page class.
//
// Template segments are literals, required placeholders "${name}" or optional
// placeholders "#{name}". Optional placeholders may only be followed by other
// optional placeholders. Segments beyond the template become indexed
// parameters.
type Mount struct {
	Path  string
	Class string

	segments []mountSegment
}

type mountSegment struct {
	literal  string
	param    string
	optional bool
}

func newMount(path, class string) (*Mount, error) {
	if class == "" {
		return nil, errors.Join(ErrInvalidMount, errors.New("empty class for "+path))
	}
	m := &Mount{Path: "/" + strings.Trim(path, "/"), Class: class}
	if m.Path == "/" {
		return nil, errors.Join(ErrInvalidMount, errors.New("root cannot be mounted, set the home page instead"))
	}

	sawOptional := false
	for _, s := range strings.Split(strings.Trim(path, "/"), "/") {
		var seg mountSegment
		switch {
		case strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}"):
			seg.param = s[2 : len(s)-1]
		case strings.HasPrefix(s, "#{") && strings.HasSuffix(s, "}"):
			seg.param = s[2 : len(s)-1]
			seg.optional = true
		case s == "":
			return nil, errors.Join(ErrInvalidMount, errors.New(path))
		default:
			seg.literal = s
		}
		if seg.param == "" && seg.literal == "" {
			return nil, errors.Join(ErrInvalidMount, errors.New(path))
		}
		if sawOptional && !seg.optional {
			return nil, errors.Join(ErrInvalidMount, errors.New(path+": optional placeholders must come last"))
		}
		sawOptional = sawOptional || seg.optional
		m.segments = append(m.segments, seg)
	}
	if m.segments[0].literal == "" {
		return nil, errors.Join(ErrInvalidMount, errors.New(path+": must start with a literal segment"))
	}
	return m, nil
}

// match decodes path segments into parameters. ok is false when the segments
// do not belong to this mount.
func (m *Mount) match(segs []string) (*urls.PageParameters, bool) {
	params := &urls.PageParameters{}
	i := 0
	for _, seg := range m.segments {
		if i >= len(segs) {
			if seg.literal != "" || !seg.optional {
				return nil, false
			}
			continue
		}
		switch {
		case seg.literal != "":
			if segs[i] != seg.literal {
				return nil, false
			}
		default:
			params.SetTyped(seg.param, segs[i], urls.ParamPath)
		}
		i++
	}
	for j := 0; i < len(segs); i, j = i+1, j+1 {
		params.SetIndexed(j, segs[i])
	}
	return params, true
}

// build fills the template from params. Parameters used by placeholders are
// removed from the returned rest. ok is false when a required placeholder has
// no value.
func (m *Mount) build(params *urls.PageParameters) (segs []string, rest *urls.PageParameters, ok bool) {
	rest = params.Clone()
	segs = []string{""}
	skipped := false
	for _, seg := range m.segments {
		if seg.literal != "" {
			segs = append(segs, seg.literal)
			continue
		}
		v, found := rest.Get(seg.param)
		if !found || v == "" {
			if !seg.optional {
				return nil, nil, false
			}
			skipped = true
			break
		}
		segs = append(segs, v)
		rest.Remove(seg.param)
	}
	if skipped && rest.IndexedCount() > 0 {
		return nil, nil, false
	}
	for j := 0; j < rest.IndexedCount(); j++ {
		v, _ := rest.Indexed(j)
		segs = append(segs, v)
	}
	return segs, rest, true
}

// literalPrefix counts leading literal segments; longer prefixes win.
func (m *Mount) literalPrefix() int {
	n := 0
	for _, s := range m.segments {
		if s.literal == "" {
			break
		}
		n++
	}
	return n
}
