package urls

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// QueryParameter is a single name/value pair of a URL query string.
type QueryParameter struct {
	Name  string
	Value string
}

// URL is an immutable, decoded representation of a request URL.
//
// Segments are stored decoded. A leading empty segment marks an absolute path
// ("/a/b" parses to ["", "a", "b"]) and a trailing empty segment marks a trailing
// slash. Every mutator returns a modified copy.
type URL struct {
	segments []string
	query    []QueryParameter
	protocol string
	host     string
	port     int
}

// New builds a URL from decoded segments and query parameters.
func New(segments []string, query ...QueryParameter) URL {
	return URL{
		segments: slices.Clone(segments),
		query:    slices.Clone(query),
	}
}

// Parse decodes s into a URL. Parse never fails: undecodable escapes are kept verbatim.
//
// A query parameter without "=" is decoded with an empty value.
func Parse(s string) URL {
	var u URL

	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}

	rawQuery := ""
	if i := strings.IndexByte(s, '?'); i >= 0 {
		rawQuery = s[i+1:]
		s = s[:i]
	}

	if scheme, rest, ok := splitScheme(s); ok {
		u.protocol = scheme
		hostPort := rest
		s = ""
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			hostPort = rest[:i]
			s = rest[i:]
		}
		u.host = hostPort
		if i := strings.LastIndexByte(hostPort, ':'); i >= 0 {
			if p, err := strconv.Atoi(hostPort[i+1:]); err == nil && p > 0 {
				u.host = hostPort[:i]
				u.port = p
			}
		}
	}

	if s != "" {
		parts := strings.Split(s, "/")
		u.segments = make([]string, len(parts))
		for i, p := range parts {
			u.segments[i] = unescapePath(p)
		}
	}

	if rawQuery != "" {
		for _, pair := range strings.Split(rawQuery, "&") {
			if pair == "" {
				continue
			}
			name, value, _ := strings.Cut(pair, "=")
			if name == "" && value == "" {
				continue
			}
			u.query = append(u.query, QueryParameter{
				Name:  unescapeQuery(name),
				Value: unescapeQuery(value),
			})
		}
	}

	return u
}

// splitScheme recognizes "scheme://rest" where scheme is a valid URL scheme.
func splitScheme(s string) (string, string, bool) {
	i := strings.Index(s, "://")
	if i <= 0 {
		return "", "", false
	}
	scheme := s[:i]
	for j, r := range scheme {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return "", "", false
		}
	}
	return scheme, s[i+3:], true
}

func unescapePath(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}

func unescapeQuery(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return s
}

func escapeQuery(s string) string {
	e := url.QueryEscape(s)
	return strings.NewReplacer("%3A", ":", "%2F", "/").Replace(e)
}

// String encodes the URL. Parse(u.String()) is structurally equal to u.
func (u URL) String() string {
	var b strings.Builder
	if u.host != "" || u.protocol != "" {
		b.WriteString(u.protocol)
		b.WriteString("://")
		b.WriteString(u.host)
		if u.port > 0 {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(u.port))
		}
		if len(u.segments) > 0 && u.segments[0] != "" {
			b.WriteByte('/')
		}
	}
	b.WriteString(u.Path())
	if len(u.query) > 0 {
		b.WriteByte('?')
		b.WriteString(u.QueryString())
	}
	return b.String()
}

// Path returns the encoded path without query string.
func (u URL) Path() string {
	enc := make([]string, len(u.segments))
	for i, s := range u.segments {
		e := url.PathEscape(s)
		// a leading "name:" segment would read back as a scheme
		if i == 0 && u.host == "" {
			e = strings.ReplaceAll(e, ":", "%3A")
		}
		enc[i] = e
	}
	return strings.Join(enc, "/")
}

// QueryString returns the encoded query string without the leading "?".
func (u URL) QueryString() string {
	var b strings.Builder
	for i, p := range u.query {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeQuery(p.Name))
		if p.Value != "" {
			b.WriteByte('=')
			b.WriteString(escapeQuery(p.Value))
		}
	}
	return b.String()
}

// Segments returns a copy of the decoded path segments.
func (u URL) Segments() []string {
	return slices.Clone(u.segments)
}

// PathSegments returns the segments without the leading empty segment of an absolute path.
func (u URL) PathSegments() []string {
	if u.IsAbsolute() {
		return slices.Clone(u.segments[1:])
	}
	return u.Segments()
}

// Query returns a copy of the query parameters in order.
func (u URL) Query() []QueryParameter {
	return slices.Clone(u.query)
}

// QueryValue returns the first value for name.
func (u URL) QueryValue(name string) (string, bool) {
	for _, p := range u.query {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// HasQuery reports whether the query string contains name.
func (u URL) HasQuery(name string) bool {
	_, ok := u.QueryValue(name)
	return ok
}

// WithQuery returns a copy with name set to value, replacing all existing values.
func (u URL) WithQuery(name, value string) URL {
	c := u.WithoutQuery(name)
	c.query = append(c.query, QueryParameter{Name: name, Value: value})
	return c
}

// AddQuery returns a copy with an additional name/value pair.
func (u URL) AddQuery(name, value string) URL {
	c := u.clone()
	c.query = append(c.query, QueryParameter{Name: name, Value: value})
	return c
}

// WithoutQuery returns a copy without any parameter called name.
func (u URL) WithoutQuery(name string) URL {
	c := u.clone()
	c.query = slices.DeleteFunc(c.query, func(p QueryParameter) bool { return p.Name == name })
	return c
}

// WithSegments returns a copy with the given decoded segments.
func (u URL) WithSegments(segments ...string) URL {
	c := u.clone()
	c.segments = slices.Clone(segments)
	return c
}

// WithoutQueryString returns a copy with an empty query.
func (u URL) WithoutQueryString() URL {
	c := u.clone()
	c.query = nil
	return c
}

// IsAbsolute reports whether the path starts with "/".
func (u URL) IsAbsolute() bool {
	return len(u.segments) > 0 && u.segments[0] == ""
}

// Host returns the host, empty for relative URLs.
func (u URL) Host() string { return u.host }

// Protocol returns the scheme, empty for relative URLs.
func (u URL) Protocol() string { return u.protocol }

// Port returns the explicit port, or zero.
func (u URL) Port() int { return u.port }

// Equal reports structural equality.
func (u URL) Equal(o URL) bool {
	return u.protocol == o.protocol &&
		u.host == o.host &&
		u.port == o.port &&
		slices.Equal(u.segments, o.segments) &&
		slices.Equal(u.query, o.query)
}

// ResolveRelative resolves rel against u the way a browser resolves a relative link.
// An absolute rel replaces the path. The query always comes from rel.
func (u URL) ResolveRelative(rel URL) URL {
	c := u.clone()
	c.query = slices.Clone(rel.query)

	if rel.IsAbsolute() || rel.host != "" {
		c.segments = slices.Clone(rel.segments)
		if rel.host != "" {
			c.protocol, c.host, c.port = rel.protocol, rel.host, rel.port
		}
		return c
	}

	if len(c.segments) > 0 {
		c.segments = c.segments[:len(c.segments)-1]
	}
	for i, s := range rel.segments {
		last := i == len(rel.segments)-1
		switch s {
		case ".":
			if last {
				c.segments = append(c.segments, "")
			}
		case "..":
			if n := len(c.segments); n > 0 && !(n == 1 && c.segments[0] == "") {
				c.segments = c.segments[:n-1]
			}
			if last {
				c.segments = append(c.segments, "")
			}
		default:
			c.segments = append(c.segments, s)
		}
	}
	return c
}

func (u URL) clone() URL {
	return URL{
		segments: slices.Clone(u.segments),
		query:    slices.Clone(u.query),
		protocol: u.protocol,
		host:     u.host,
		port:     u.port,
	}
}
