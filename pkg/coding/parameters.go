package coding

import (
	"strconv"
	"strings"

	"github.com/dmitrymomot/loom/pkg/urls"
)

// Query parameter names and path prefixes of the URL scheme.
const (
	InterfaceParam    = "wicket:interface"
	BookmarkableParam = "wicket:bookmarkablePage"
	PageMapParam      = "wicket:pageMapName"
	ResourcesPrefix   = "resources"

	// RedirectListener is the interface of a plain page render. It is written
	// as an empty interface segment.
	RedirectListener = "IRedirectListener"

	// DefaultPageMap is the page map used when a URL names none.
	DefaultPageMap = ""
)

// Separator joins the parts of an interface parameter and component paths.
const Separator = ":"

// RequestParameters are the framework attributes decoded from a request URL.
type RequestParameters struct {
	// BookmarkablePage is the page class to construct, if any.
	BookmarkablePage string
	PageMapName      string
	// ComponentPath starts with the page id: "3:form:name".
	ComponentPath string
	Interface     string
	// Version is -1 without an interface parameter. An empty version inside
	// one means version 0.
	Version int
	// BehaviorID is -1 when the URL addresses no behavior.
	BehaviorID  int
	ResourceKey string
	// URLDepth is the number of path segments of the URL the link was rendered
	// on, -1 when unknown. It lets relative links be resolved after redirects.
	URLDepth int
	// Params are the page parameters: the query without framework parameters,
	// plus mount placeholders.
	Params *urls.PageParameters
	// Path is the request path without leading slash.
	Path string
}

func newRequestParameters() RequestParameters {
	return RequestParameters{Version: -1, BehaviorID: -1, URLDepth: -1, Params: &urls.PageParameters{}}
}

// PageID returns the page id leading the component path.
func (p RequestParameters) PageID() (int, bool) {
	if p.ComponentPath == "" {
		return 0, false
	}
	head, _, _ := strings.Cut(p.ComponentPath, Separator)
	id, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return id, true
}

// RelativePath returns the component path below the page.
func (p RequestParameters) RelativePath() string {
	_, rest, _ := strings.Cut(p.ComponentPath, Separator)
	return rest
}

// HasInterface reports whether a listener other than a plain render is addressed.
func (p RequestParameters) HasInterface() bool {
	return p.Interface != "" && p.Interface != RedirectListener
}

// IsEmpty reports a request for the application root without parameters.
func (p RequestParameters) IsEmpty() bool {
	return p.Path == "" && p.BookmarkablePage == "" && p.ComponentPath == "" &&
		p.ResourceKey == "" && p.Params.IsEmpty()
}

// ListenerRef addresses a listener on a stored page.
type ListenerRef struct {
	PageMap       string
	PageID        int
	ComponentPath string // below the page
	Version       int
	Interface     string
	BehaviorID    int // -1 for none
	URLDepth      int // -1 for unknown
}

// encode writes pagemap:pageid:path:version:interface:behavior:depth.
func (r ListenerRef) encode() string {
	path := strconv.Itoa(r.PageID)
	if r.ComponentPath != "" {
		path += Separator + r.ComponentPath
	}
	version := ""
	if r.Version > 0 {
		version = strconv.Itoa(r.Version)
	}
	iface := r.Interface
	if iface == RedirectListener {
		iface = ""
	}
	behavior := ""
	if r.BehaviorID >= 0 {
		behavior = strconv.Itoa(r.BehaviorID)
	}
	depth := ""
	if r.URLDepth >= 0 {
		depth = strconv.Itoa(r.URLDepth)
	}
	return strings.Join([]string{r.PageMap, path, version, iface, behavior, depth}, Separator)
}

// parseInterface decodes an interface parameter into p. The component path
// may contain separators itself, so fields are taken from both ends.
func parseInterface(v string, p *RequestParameters) error {
	parts := strings.Split(v, Separator)
	if len(parts) < 6 {
		return ErrMalformedInterface
	}
	n := len(parts)

	p.PageMapName = parts[0]
	p.ComponentPath = strings.Join(parts[1:n-4], Separator)

	p.Version = 0
	if s := parts[n-4]; s != "" {
		ver, err := strconv.Atoi(s)
		if err != nil || ver < 0 {
			return ErrMalformedInterface
		}
		p.Version = ver
	}

	p.Interface = parts[n-3]
	if p.Interface == "" {
		p.Interface = RedirectListener
	}

	if s := parts[n-2]; s != "" {
		id, err := strconv.Atoi(s)
		if err != nil || id < 0 {
			return ErrMalformedInterface
		}
		p.BehaviorID = id
	}

	if s := parts[n-1]; s != "" {
		depth, err := strconv.Atoi(s)
		if err != nil {
			return ErrMalformedInterface
		}
		p.URLDepth = depth
	}
	return nil
}
