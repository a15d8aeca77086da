package internal

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/pagemap"
	"github.com/dmitrymomot/loom/pkg/urls"
)

// OutcomeKind tells the processor what to do after a target step.
type OutcomeKind int

const (
	// Continue ends processing: the response is complete.
	Continue OutcomeKind = iota
	// SwitchTarget replaces the current target and processes the new one.
	SwitchTarget
	// Fail aborts processing with an error for the exception mapper.
	Fail
)

// Outcome is the result of ProcessEvents or Respond.
type Outcome struct {
	Kind   OutcomeKind
	Target RequestTarget
	Err    error
}

func done() Outcome { return Outcome{Kind: Continue} }

func switchTo(t RequestTarget) Outcome { return Outcome{Kind: SwitchTarget, Target: t} }

func fail(err error) Outcome { return Outcome{Kind: Fail, Err: err} }

// RequestTarget produces the response of a request.
type RequestTarget interface {
	Respond(rc *RequestCycle) Outcome
}

// EventProcessor is a target that handles events, such as a link click,
// before a response target is chosen.
type EventProcessor interface {
	RequestTarget
	ProcessEvents(rc *RequestCycle) Outcome
}

// Locker is implemented by targets touching session pages. The processor
// holds the returned lock while the target runs. A nil lock means there is
// nothing to guard.
type Locker interface {
	Lock(rc *RequestCycle) sync.Locker
}

func targetName(t RequestTarget) string {
	if t == nil {
		return "<nil>"
	}
	name := strings.TrimPrefix(fmt.Sprintf("%T", t), "*")
	return strings.TrimPrefix(name, "internal.")
}

// BookmarkablePageTarget constructs a page of Class and renders it.
type BookmarkablePageTarget struct {
	Class   string
	Params  *urls.PageParameters
	PageMap string
	Policy  RedirectPolicy
	// Status of a direct render. Default: 200.
	Status int

	page *component.Page
}

func (t *BookmarkablePageTarget) Lock(rc *RequestCycle) sync.Locker { return rc.sessionLock() }

func (t *BookmarkablePageTarget) Respond(rc *RequestCycle) Outcome {
	p, err := rc.newPage(t.Class, t.Params)
	if err != nil {
		return fail(err)
	}
	p.SetCreatedBookmarkable(true)

	pm := t.PageMap
	if pm == "" && t.Policy == RedirectAuto && rc.restarts == 0 &&
		rc.app.settings.AutomaticMultiWindowSupport && rc.renderedBefore(t.Class) {
		pm = pagemap.NewName()
	}
	p.SetPageMapName(pm)
	t.page = p
	return rc.respondWithPage(p, t.Policy, t.Status)
}

// Page returns the constructed page, once Respond ran.
func (t *BookmarkablePageTarget) Page() *component.Page { return t.page }

// BookmarkableListenerTarget constructs a page and invokes a listener on the
// fresh instance. Stateless links and forms use it.
type BookmarkableListenerTarget struct {
	Class         string
	Params        *urls.PageParameters
	PageMap       string
	ComponentPath string
	Interface     string
	BehaviorID    int

	invocation *ListenerInvocation
}

func (t *BookmarkableListenerTarget) Lock(rc *RequestCycle) sync.Locker { return rc.sessionLock() }

func (t *BookmarkableListenerTarget) ProcessEvents(rc *RequestCycle) Outcome {
	p, err := rc.newPage(t.Class, t.Params)
	if err != nil {
		return fail(err)
	}
	p.SetCreatedBookmarkable(true)
	p.SetPageMapName(t.PageMap)

	if err := p.Prepare(rc.Context(), rc.renderEnv(rc.url)); err != nil {
		return fail(err)
	}
	inv, err := rc.resolveListener(p, t.ComponentPath, t.Interface, t.BehaviorID)
	if err != nil {
		return fail(err)
	}
	t.invocation = inv
	return inv.Invoke(rc)
}

func (t *BookmarkableListenerTarget) Respond(rc *RequestCycle) Outcome {
	if t.invocation == nil {
		return fail(ErrPageExpired)
	}
	return rc.respondWithPage(t.invocation.Page, RedirectAuto, 0)
}

// Invocation returns the listener call, once ProcessEvents ran.
func (t *BookmarkableListenerTarget) Invocation() *ListenerInvocation { return t.invocation }

// ListenerInterfaceTarget invokes a listener on a component of a stored page.
type ListenerInterfaceTarget struct {
	Invocation *ListenerInvocation
}

func (t *ListenerInterfaceTarget) Lock(rc *RequestCycle) sync.Locker { return rc.sessionLock() }

func (t *ListenerInterfaceTarget) ProcessEvents(rc *RequestCycle) Outcome {
	return t.Invocation.Invoke(rc)
}

func (t *ListenerInterfaceTarget) Respond(rc *RequestCycle) Outcome {
	return rc.respondWithPage(t.Invocation.Page, RedirectAuto, 0)
}

// PageTarget renders an existing page instance.
type PageTarget struct {
	Page   *component.Page
	Policy RedirectPolicy
	Status int
}

func (t *PageTarget) Lock(rc *RequestCycle) sync.Locker { return rc.sessionLock() }

func (t *PageTarget) Respond(rc *RequestCycle) Outcome {
	rc.touch(t.Page)
	return rc.respondWithPage(t.Page, t.Policy, t.Status)
}

// ComponentTarget renders one component of a page for an htmx swap.
type ComponentTarget struct {
	Page      *component.Page
	Component component.Component
}

func (t *ComponentTarget) Lock(rc *RequestCycle) sync.Locker { return rc.sessionLock() }

func (t *ComponentTarget) Respond(rc *RequestCycle) Outcome {
	base := rc.clientURL()
	html, err := t.Page.RenderComponent(rc.Context(), rc.renderEnv(base), t.Component)
	if err != nil {
		return fail(err)
	}
	if err := rc.storePage(t.Page); err != nil {
		return fail(err)
	}
	rc.writeHTML(http.StatusOK, html)
	return done()
}

// SharedResourceTarget serves an application wide resource.
type SharedResourceTarget struct {
	Key     string
	Handler http.Handler
}

func (t *SharedResourceTarget) Respond(rc *RequestCycle) Outcome {
	t.Handler.ServeHTTP(rc.w, rc.req)
	return done()
}

// ExternalResourceTarget hands the request to a handler outside the
// component model, such as a file server.
type ExternalResourceTarget struct {
	Handler http.Handler
}

func (t *ExternalResourceTarget) Respond(rc *RequestCycle) Outcome {
	if t.Handler == nil {
		return switchTo(&ErrorCodeTarget{Code: http.StatusNotFound})
	}
	t.Handler.ServeHTTP(rc.w, rc.req)
	return done()
}

// RedirectTarget redirects to URL, which is relative to the application root.
type RedirectTarget struct {
	URL string
}

func (t *RedirectTarget) Respond(rc *RequestCycle) Outcome {
	rc.redirect(urls.Parse(t.URL))
	return done()
}

// ErrorCodeTarget answers with a bare status code.
type ErrorCodeTarget struct {
	Code    int
	Message string
	// NoStore adds headers keeping the response out of caches.
	NoStore bool
	// NoBody omits the status text.
	NoBody bool
}

func (t *ErrorCodeTarget) Respond(rc *RequestCycle) Outcome {
	h := rc.w.Header()
	if t.NoStore {
		setNoStore(h)
	}
	if t.NoBody {
		rc.w.WriteHeader(t.Code)
		return done()
	}
	msg := t.Message
	if msg == "" {
		msg = http.StatusText(t.Code)
	}
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	rc.w.WriteHeader(t.Code)
	_, _ = rc.w.Write([]byte(msg + "\n"))
	return done()
}

// BufferedResponseTarget writes a response rendered on an earlier request.
type BufferedResponseTarget struct {
	Buffer *BufferedResponse
}

func (t *BufferedResponseTarget) Respond(rc *RequestCycle) Outcome {
	if err := t.Buffer.WriteTo(rc.w); err != nil {
		return fail(err)
	}
	return done()
}

// TemplTarget renders a templ component as the whole response.
type TemplTarget struct {
	View    templ.Component
	Status  int
	NoStore bool
}

func (t *TemplTarget) Respond(rc *RequestCycle) Outcome {
	var buf bytes.Buffer
	if err := t.View.Render(rc.Context(), &buf); err != nil {
		return fail(err)
	}
	if t.NoStore {
		setNoStore(rc.w.Header())
	}
	status := t.Status
	if status == 0 {
		status = http.StatusOK
	}
	rc.writeHTML(status, buf.String())
	return done()
}

// EmptyTarget writes nothing. Listeners answering the request themselves
// leave it behind.
type EmptyTarget struct{}

func (EmptyTarget) Respond(*RequestCycle) Outcome { return done() }

func setNoStore(h http.Header) {
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}

var errNilTarget = errors.New("loom: nil request target")
