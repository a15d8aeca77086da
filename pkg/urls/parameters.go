package urls

import (
	"errors"
	"slices"
	"strconv"
)

// ParamType tells where a named parameter is encoded.
type ParamType int

const (
	// ParamQuery parameters are encoded in the query string.
	ParamQuery ParamType = iota
	// ParamPath parameters are encoded as mount placeholder segments.
	ParamPath
)

// NamedPair is a single named page parameter.
type NamedPair struct {
	Key   string
	Value string
	Type  ParamType
}

// PageParameters holds the named and indexed parameters a bookmarkable page
// is constructed with. The zero value is ready to use.
type PageParameters struct {
	named   []NamedPair
	indexed []string
}

// NewPageParameters returns parameters populated from alternating key/value pairs.
func NewPageParameters(kv ...string) *PageParameters {
	p := &PageParameters{}
	for i := 0; i+1 < len(kv); i += 2 {
		p.Add(kv[i], kv[i+1])
	}
	return p
}

// Set replaces every value of key.
func (p *PageParameters) Set(key, value string) *PageParameters {
	return p.SetTyped(key, value, ParamQuery)
}

// SetTyped replaces every value of key, recording where it is encoded.
func (p *PageParameters) SetTyped(key, value string, t ParamType) *PageParameters {
	idx := slices.IndexFunc(p.named, func(n NamedPair) bool { return n.Key == key })
	p.Remove(key)
	pair := NamedPair{Key: key, Value: value, Type: t}
	if idx >= 0 && idx <= len(p.named) {
		p.named = slices.Insert(p.named, idx, pair)
	} else {
		p.named = append(p.named, pair)
	}
	return p
}

// Add appends a value for key, keeping existing values.
func (p *PageParameters) Add(key, value string) *PageParameters {
	p.named = append(p.named, NamedPair{Key: key, Value: value})
	return p
}

// Get returns the first value of key.
func (p *PageParameters) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, n := range p.named {
		if n.Key == key {
			return n.Value, true
		}
	}
	return "", false
}

// GetInt parses the first value of key as an int.
func (p *PageParameters) GetInt(key string) (int, error) {
	v, ok := p.Get(key)
	if !ok {
		return 0, ErrParameterNotFound
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Join(ErrInvalidParameter, err)
	}
	return n, nil
}

// Values returns every value of key in order.
func (p *PageParameters) Values(key string) []string {
	if p == nil {
		return nil
	}
	var out []string
	for _, n := range p.named {
		if n.Key == key {
			out = append(out, n.Value)
		}
	}
	return out
}

// Remove deletes every value of key.
func (p *PageParameters) Remove(key string) *PageParameters {
	p.named = slices.DeleteFunc(p.named, func(n NamedPair) bool { return n.Key == key })
	return p
}

// Names returns distinct keys in first-seen order.
func (p *PageParameters) Names() []string {
	if p == nil {
		return nil
	}
	var out []string
	for _, n := range p.named {
		if !slices.Contains(out, n.Key) {
			out = append(out, n.Key)
		}
	}
	return out
}

// Named returns a copy of all named pairs.
func (p *PageParameters) Named() []NamedPair {
	if p == nil {
		return nil
	}
	return slices.Clone(p.named)
}

// SetIndexed sets the indexed parameter at i, growing the list as needed.
func (p *PageParameters) SetIndexed(i int, value string) *PageParameters {
	for len(p.indexed) <= i {
		p.indexed = append(p.indexed, "")
	}
	p.indexed[i] = value
	return p
}

// Indexed returns the indexed parameter at i.
func (p *PageParameters) Indexed(i int) (string, bool) {
	if p == nil || i < 0 || i >= len(p.indexed) {
		return "", false
	}
	return p.indexed[i], true
}

// IndexedCount returns the number of indexed parameters.
func (p *PageParameters) IndexedCount() int {
	if p == nil {
		return 0
	}
	return len(p.indexed)
}

// IsEmpty reports whether there are no parameters at all.
func (p *PageParameters) IsEmpty() bool {
	return p == nil || len(p.named) == 0 && len(p.indexed) == 0
}

// Clone returns a deep copy.
func (p *PageParameters) Clone() *PageParameters {
	if p == nil {
		return &PageParameters{}
	}
	return &PageParameters{
		named:   slices.Clone(p.named),
		indexed: slices.Clone(p.indexed),
	}
}

// Equal compares parameters ignoring the order of distinct keys.
func (p *PageParameters) Equal(o *PageParameters) bool {
	if p.IsEmpty() || o.IsEmpty() {
		return p.IsEmpty() == o.IsEmpty()
	}
	if !slices.Equal(p.indexed, o.indexed) || len(p.named) != len(o.named) {
		return false
	}
	for _, k := range p.Names() {
		if !slices.Equal(p.Values(k), o.Values(k)) {
			return false
		}
	}
	return true
}

// FromQuery builds parameters from the query of u, skipping the reserved names.
func FromQuery(u URL, reserved ...string) *PageParameters {
	p := &PageParameters{}
	for _, q := range u.query {
		if slices.Contains(reserved, q.Name) {
			continue
		}
		p.Add(q.Name, q.Value)
	}
	return p
}
