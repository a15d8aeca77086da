package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/dmitrymomot/loom/pkg/component"
)

// ListenerState is the progress of a listener call. A listener whose
// component is gone never gets an invocation; resolving it fails with
// ErrPageExpired instead.
type ListenerState int

const (
	StateResolved ListenerState = iota
	StateInvoking
	StateNormal
	StateRedirected
	StateUnauthorized
	StateFailed
)

func (s ListenerState) String() string {
	switch s {
	case StateResolved:
		return "resolved"
	case StateInvoking:
		return "invoking"
	case StateNormal:
		return "normal"
	case StateRedirected:
		return "redirected"
	case StateUnauthorized:
		return "unauthorized"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("ListenerState(%d)", int(s))
}

// Listener is a named request listener interface components implement.
type Listener struct {
	Name          string
	Method        string
	DeclaringType string
	// RecordsRender is set when the call may change the page, which is then
	// rendered as the response. Other listeners write their own response.
	RecordsRender bool
	Invoke        func(ctx context.Context, c component.Component, rc *RequestCycle) error
}

// ListenerRegistry maps listener interface names used in URLs to listeners.
type ListenerRegistry struct {
	mu        sync.RWMutex
	listeners map[string]Listener
}

// NewListenerRegistry creates a registry holding the link, form submit and
// behavior listeners.
func NewListenerRegistry() *ListenerRegistry {
	r := &ListenerRegistry{listeners: make(map[string]Listener)}
	for _, l := range defaultListeners() {
		_ = r.Register(l)
	}
	return r
}

// Register adds or replaces a listener.
func (r *ListenerRegistry) Register(l Listener) error {
	if l.Name == "" || l.Invoke == nil {
		return errors.Join(ErrUnknownListener, fmt.Errorf("incomplete listener %q", l.Name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[l.Name] = l
	return nil
}

// Lookup returns the listener registered under name.
func (r *ListenerRegistry) Lookup(name string) (Listener, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.listeners[name]
	return l, ok
}

// Names returns the registered interface names, sorted.
func (r *ListenerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.listeners))
	for n := range r.listeners {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func defaultListeners() []Listener {
	return []Listener{
		{
			Name:          component.LinkListenerName,
			Method:        "OnLinkClicked",
			DeclaringType: "component.LinkListener",
			RecordsRender: true,
			Invoke: func(_ context.Context, c component.Component, rc *RequestCycle) error {
				l, ok := c.(component.LinkListener)
				if !ok {
					return ErrListenerNotSupported
				}
				return l.OnLinkClicked(rc)
			},
		},
		{
			Name:          component.FormSubmitListenerName,
			Method:        "OnFormSubmitted",
			DeclaringType: "component.FormSubmitListener",
			RecordsRender: true,
			Invoke: func(_ context.Context, c component.Component, rc *RequestCycle) error {
				f, ok := c.(component.FormSubmitListener)
				if !ok {
					return ErrListenerNotSupported
				}
				return f.OnFormSubmitted(rc)
			},
		},
		{
			Name:          component.BehaviorListenerName,
			Method:        "OnRequest",
			DeclaringType: "component.BehaviorListener",
			RecordsRender: true,
			Invoke: func(_ context.Context, c component.Component, rc *RequestCycle) error {
				id := rc.params.BehaviorID
				bs := c.Behaviors()
				if id < 0 || id >= len(bs) {
					return ErrListenerNotSupported
				}
				b, ok := bs[id].(component.BehaviorListener)
				if !ok {
					return ErrListenerNotSupported
				}
				return b.OnRequest(c, rc)
			},
		},
	}
}

// ListenerInvocation is one listener call on a page component.
type ListenerInvocation struct {
	Page       *component.Page
	Component  component.Component
	Listener   Listener
	BehaviorID int

	state ListenerState
}

// State returns where the call is.
func (li *ListenerInvocation) State() ListenerState { return li.state }

// resolveListener finds the component at path on p and the listener named
// iface. A missing component means the page changed since the link was
// rendered and is reported as an expired page.
func (rc *RequestCycle) resolveListener(p *component.Page, path, iface string, behaviorID int) (*ListenerInvocation, error) {
	l, ok := rc.app.listeners.Lookup(iface)
	if !ok {
		return nil, NewHTTPError(http.StatusBadRequest, "unknown listener interface",
			WithError(errors.Join(ErrUnknownListener, errors.New(iface))))
	}
	c, ok := p.Lookup(path)
	if !ok {
		return nil, errors.Join(ErrPageExpired, fmt.Errorf("no component %q on page %s:%d", path, p.Class(), p.PageID()))
	}
	return &ListenerInvocation{Page: p, Component: c, Listener: l, BehaviorID: behaviorID}, nil
}

// Invoke authorizes and runs the listener and turns its result into an
// outcome.
func (li *ListenerInvocation) Invoke(rc *RequestCycle) Outcome {
	if err := li.authorize(rc); err != nil {
		li.state = StateUnauthorized
		return fail(err)
	}
	li.state = StateInvoking
	rc.logger.DebugContext(rc.Context(), "invoking listener",
		"listener", li.Listener.Name,
		"page_id", li.Page.PageID(),
		"component_path", li.Component.Path(),
	)
	return li.settle(rc, li.call(rc))
}

func (li *ListenerInvocation) authorize(rc *RequestCycle) error {
	c := li.Component
	ok := c.IsVisibleInHierarchy() && c.IsEnabledInHierarchy()
	if ok && rc.app.authorizer != nil {
		ok = rc.app.authorizer.IsActionAuthorized(c, component.ActionEnable)
	}
	if ok {
		return nil
	}
	return &AuthorizationError{
		Class:  li.Page.Class(),
		Path:   c.Path(),
		Action: component.ActionEnable.String(),
		Err:    ErrUnauthorizedListener,
	}
}

func (li *ListenerInvocation) call(rc *RequestCycle) (err error) {
	li.Page.BeforeCallComponent(li.Component, li.Listener.Name)
	defer li.Page.AfterCallComponent(li.Component, li.Listener.Name)
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return li.Listener.Invoke(rc.Context(), li.Component, rc)
}

func (li *ListenerInvocation) settle(rc *RequestCycle, err error) Outcome {
	var (
		restart   *RestartResponseError
		intercept *RestartResponseAtInterceptPageError
		panicErr  *PanicError
	)
	switch {
	case errors.As(err, &restart):
		li.state = StateRedirected
		return switchTo(restart.Target)
	case errors.As(err, &intercept):
		li.state = StateRedirected
		return switchTo(rc.interceptTarget(intercept))
	case errors.As(err, &panicErr):
		li.state = StateFailed
		return fail(panicErr)
	case err != nil:
		li.state = StateFailed
		return fail(&ListenerInvocationError{
			Method:        li.Listener.Method,
			DeclaringType: li.Listener.DeclaringType,
			Path:          li.Component.Path(),
			Err:           err,
		})
	}

	if t := rc.takeResponse(); t != nil {
		li.state = StateRedirected
		return switchTo(t)
	}
	li.state = StateNormal
	if !li.Listener.RecordsRender {
		return switchTo(EmptyTarget{})
	}
	if rc.IsHTMX() && li.Listener.Name == component.BehaviorListenerName {
		return switchTo(&ComponentTarget{Page: li.Page, Component: li.Component})
	}
	return switchTo(&PageTarget{Page: li.Page})
}
