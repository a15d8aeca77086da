package urls

import "slices"

// Renderer renders URLs relative to the URL of the current request.
// Base is interpreted relative to the application root.
type Renderer struct {
	Base URL
}

// NewRenderer returns a Renderer for the given base URL.
func NewRenderer(base URL) *Renderer {
	return &Renderer{Base: base}
}

// SetBase swaps the base URL and returns the previous one.
func (r *Renderer) SetBase(base URL) URL {
	old := r.Base
	r.Base = base
	return old
}

// RenderRelative renders target so that a browser at Base resolves it to target.
// Full URLs (with host) are rendered unchanged.
func (r *Renderer) RenderRelative(target URL) string {
	if target.host != "" {
		return target.String()
	}

	base := r.Base.PathSegments()
	dir := base
	if len(dir) > 0 {
		dir = dir[:len(dir)-1]
	}
	tgt := target.PathSegments()

	common := 0
	for common < len(dir) && common < len(tgt) && dir[common] == tgt[common] {
		common++
	}

	out := make([]string, 0, len(dir)-common+len(tgt)-common+1)
	for range len(dir) - common {
		out = append(out, "..")
	}
	out = append(out, tgt[common:]...)
	if n := len(out); n > 0 && out[n-1] == ".." {
		out = append(out, "")
	}

	s := URL{segments: out, query: target.query}.String()
	if len(out) == 0 || out[0] != ".." {
		s = "./" + s
	}
	return s
}

// RenderAbsolute renders target as an absolute path from the application root.
func (r *Renderer) RenderAbsolute(target URL) string {
	if target.host != "" {
		return target.String()
	}
	segs := append([]string{""}, target.PathSegments()...)
	if len(segs) == 1 {
		segs = append(segs, "")
	}
	return URL{segments: segs, query: slices.Clone(target.query)}.String()
}
