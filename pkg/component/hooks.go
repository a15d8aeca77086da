package component

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/text/language"

	"github.com/dmitrymomot/loom/pkg/header"
	"github.com/dmitrymomot/loom/pkg/markup"
	"github.com/dmitrymomot/loom/pkg/urls"
)

// Listener interface names as they appear in URLs.
const (
	LinkListenerName       = "ILinkListener"
	FormSubmitListenerName = "IFormSubmitListener"
	BehaviorListenerName   = "IBehaviorListener"
)

// Optional component capabilities, checked with type assertions.
type (
	// BeforeRenderer runs before the component renders, after it is placed.
	BeforeRenderer interface {
		OnBeforeRender() error
	}

	// Detacher drops transient state at the end of a request.
	Detacher interface {
		OnDetach()
	}

	// TagRenderer adjusts the component tag before it is written.
	TagRenderer interface {
		RenderTag(r *RenderContext, tag *markup.Tag)
	}

	// BodyRenderer replaces the markup between the component tags.
	BodyRenderer interface {
		RenderBody(r *RenderContext, tag *markup.Tag, body markup.Fragment) error
	}

	// HeaderContributor adds items to the page head.
	HeaderContributor interface {
		RenderHead(resp *header.Response) error
	}

	// StatelessHinter reports whether a component needs its page stored.
	StatelessHinter interface {
		StatelessHint() bool
	}

	// Repeater renders its component tag once per item.
	Repeater interface {
		Container
		Items() []Container
	}
)

// Listener capabilities invoked by the request cycle.
type (
	LinkListener interface {
		OnLinkClicked(cycle Cycle) error
	}

	FormSubmitListener interface {
		OnFormSubmitted(cycle Cycle) error
	}

	BehaviorListener interface {
		OnRequest(c Component, cycle Cycle) error
	}
)

// Cycle is the view of the current request a listener gets.
type Cycle interface {
	Context() context.Context
	Request() *http.Request
	Logger() *slog.Logger
	Locale() language.Tag
	FormValue(name string) string
	IsHTMX() bool
	// SetResponsePage answers the request with a new bookmarkable page.
	SetResponsePage(class string, params *urls.PageParameters)
	// SetResponsePageInstance answers the request with an existing page.
	SetResponsePageInstance(p *Page)
}

// URLs generates links during rendering.
type URLs interface {
	ListenerURL(c Component, listener string) string
	BehaviorURL(c Component, behaviorID int) string
	BookmarkableURL(class string, params *urls.PageParameters) string
	ResourceURL(key string) string
}

// Localizer resolves <wicket:message> keys.
type Localizer interface {
	Localize(key string) (string, bool)
}

// Action is checked by an Authorizer.
type Action int

const (
	ActionRender Action = iota
	ActionEnable
)

func (a Action) String() string {
	if a == ActionEnable {
		return "enable"
	}
	return "render"
}

// Authorizer decides which pages may be created and which components may
// render or accept input.
type Authorizer interface {
	IsInstantiationAuthorized(class string) bool
	IsActionAuthorized(c Component, action Action) bool
}

var (
	// SkipChildren skips the children of the visited component.
	SkipChildren = errors.New("component: skip children")
	// StopWalk ends a Walk without error.
	StopWalk = errors.New("component: stop walk")
)

// Walk visits c and its descendants depth first, parents before children.
func Walk(c Component, fn func(Component) error) error {
	err := walk(c, fn)
	if errors.Is(err, StopWalk) {
		return nil
	}
	return err
}

func walk(c Component, fn func(Component) error) error {
	if err := fn(c); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	cont, ok := c.(Container)
	if !ok {
		return nil
	}
	for _, ch := range cont.Children() {
		if err := walk(ch, fn); err != nil {
			return err
		}
	}
	return nil
}
