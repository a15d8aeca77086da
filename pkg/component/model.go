package component

import "fmt"

// Model supplies the data a component displays or edits.
type Model interface {
	Object() any
	SetObject(v any)
}

// Detachable models drop transient state at the end of each request.
type Detachable interface {
	Detach()
}

// ValueModel holds a value.
type ValueModel struct {
	v any
}

// Of wraps v in a model.
func Of(v any) *ValueModel { return &ValueModel{v: v} }

func (m *ValueModel) Object() any     { return m.v }
func (m *ValueModel) SetObject(v any) { m.v = v }

type readOnly func() any

// ReadOnly computes the object on every read. Writes are ignored.
func ReadOnly(fn func() any) Model { return readOnly(fn) }

func (f readOnly) Object() any   { return f() }
func (f readOnly) SetObject(any) {}

// LoadableModel loads its object on first access in a request and forgets it
// on Detach, so only the loader lives in the page map.
type LoadableModel struct {
	load   func() any
	v      any
	loaded bool
}

// Loadable creates a LoadableModel.
func Loadable(load func() any) *LoadableModel { return &LoadableModel{load: load} }

func (m *LoadableModel) Object() any {
	if !m.loaded {
		m.v = m.load()
		m.loaded = true
	}
	return m.v
}

func (m *LoadableModel) SetObject(v any) {
	m.v = v
	m.loaded = true
}

func (m *LoadableModel) Detach() {
	m.v = nil
	m.loaded = false
}

// String formats the model object for display. A nil model or object is "".
func String(m Model) string {
	if m == nil {
		return ""
	}
	switch v := m.Object().(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
