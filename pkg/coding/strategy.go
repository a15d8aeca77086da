package coding

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrymomot/loom/pkg/urls"
)

// Strategy translates between URLs and RequestParameters.
//
// Unmounted URLs use query parameters:
//
//	?wicket:bookmarkablePage=pagemap:Class&name=value
//	?wicket:interface=pagemap:3:form:2:IFormSubmitListener::1
//	/resources/scope/name.css
//
// Mounted pages use their path template and keep wicket:interface as a query
// parameter for listeners.
type Strategy struct {
	mu     sync.RWMutex
	mounts []*Mount
}

// NewStrategy creates a strategy without mounts.
func NewStrategy() *Strategy {
	return &Strategy{}
}

// Mount binds a path template to a page class. See Mount for the template syntax.
func (s *Strategy) Mount(path, class string) error {
	m, err := newMount(path, class)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.mounts {
		if o.Path == m.Path {
			return errors.Join(ErrMountExists, errors.New(m.Path))
		}
	}
	s.mounts = append(s.mounts, m)
	slices.SortStableFunc(s.mounts, func(a, b *Mount) int {
		return b.literalPrefix() - a.literalPrefix()
	})
	return nil
}

// Mounts returns the registered mounts, most specific first.
func (s *Strategy) Mounts() []Mount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Mount, len(s.mounts))
	for i, m := range s.mounts {
		out[i] = Mount{Path: m.Path, Class: m.Class}
	}
	return out
}

// MountFor returns the mount of class.
func (s *Strategy) MountFor(class string) (*Mount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.mounts {
		if m.Class == class {
			return m, true
		}
	}
	return nil, false
}

// Decode extracts request parameters from u, which is relative to the
// application root.
func (s *Strategy) Decode(u urls.URL) (RequestParameters, error) {
	p := newRequestParameters()
	segs := trimEmpty(u.PathSegments())
	p.Path = strings.Join(segs, "/")
	p.PageMapName, _ = u.QueryValue(PageMapParam)

	if len(segs) > 1 && segs[0] == ResourcesPrefix {
		p.ResourceKey = strings.Join(segs[1:], "/")
		p.Params = urls.FromQuery(u)
		return p, nil
	}

	if m, params, ok := s.match(segs); ok {
		p.BookmarkablePage = m.Class
		for _, q := range urls.FromQuery(u, InterfaceParam, PageMapParam, BookmarkableParam).Named() {
			params.Add(q.Key, q.Value)
		}
		p.Params = params
		if v, ok := u.QueryValue(InterfaceParam); ok {
			if err := parseInterface(v, &p); err != nil {
				return p, errors.Join(err, errors.New(v))
			}
		}
		return p, nil
	}

	p.Params = urls.FromQuery(u, InterfaceParam, PageMapParam, BookmarkableParam)

	if v, ok := u.QueryValue(BookmarkableParam); ok {
		pm, class, found := strings.Cut(v, Separator)
		if !found || class == "" || strings.Contains(class, Separator) {
			return p, errors.Join(ErrMalformedBookmarkable, errors.New(v))
		}
		p.PageMapName = pm
		p.BookmarkablePage = class
	}

	if v, ok := u.QueryValue(InterfaceParam); ok {
		if err := parseInterface(v, &p); err != nil {
			return p, errors.Join(err, errors.New(v))
		}
	}
	return p, nil
}

func (s *Strategy) match(segs []string) (*Mount, *urls.PageParameters, bool) {
	if len(segs) == 0 {
		return nil, nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.mounts {
		if params, ok := m.match(segs); ok {
			return m, params, true
		}
	}
	return nil, nil, false
}

// EncodeBookmarkable returns the URL constructing class with params.
func (s *Strategy) EncodeBookmarkable(pageMap, class string, params *urls.PageParameters) urls.URL {
	if m, ok := s.MountFor(class); ok {
		if segs, rest, ok := m.build(params); ok {
			u := urls.New(segs)
			for _, n := range rest.Named() {
				u = u.AddQuery(n.Key, n.Value)
			}
			if pageMap != DefaultPageMap {
				u = u.WithQuery(PageMapParam, pageMap)
			}
			return u
		}
	}

	u := urls.New([]string{"", ""}, urls.QueryParameter{Name: BookmarkableParam, Value: pageMap + Separator + class})
	for _, n := range params.Named() {
		u = u.AddQuery(n.Key, n.Value)
	}
	return u
}

// EncodeListener returns the URL invoking a listener on a stored page.
func (s *Strategy) EncodeListener(ref ListenerRef) urls.URL {
	return urls.New([]string{"", ""}, urls.QueryParameter{Name: InterfaceParam, Value: ref.encode()})
}

// EncodeBookmarkableListener returns the URL invoking a listener on a page
// constructed from class and params, for stateless pages. If a page of that
// class is still stored, the listener runs on it instead.
func (s *Strategy) EncodeBookmarkableListener(class string, params *urls.PageParameters, ref ListenerRef) urls.URL {
	return s.EncodeBookmarkable(ref.PageMap, class, params).WithQuery(InterfaceParam, ref.encode())
}

// EncodePage returns the URL rendering a stored page.
func (s *Strategy) EncodePage(pageMap string, pageID, version int) urls.URL {
	return s.EncodeListener(ListenerRef{
		PageMap:    pageMap,
		PageID:     pageID,
		Version:    version,
		Interface:  RedirectListener,
		BehaviorID: -1,
		URLDepth:   -1,
	})
}

// EncodeResource returns the URL of a shared resource.
func (s *Strategy) EncodeResource(key string) urls.URL {
	segs := append([]string{"", ResourcesPrefix}, strings.Split(key, "/")...)
	return urls.New(segs)
}

func trimEmpty(segs []string) []string {
	for len(segs) > 0 && segs[len(segs)-1] == "" {
		segs = segs[:len(segs)-1]
	}
	return segs
}
