package internal

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dmitrymomot/loom/pkg/htmx"
)

// serveCycle runs one request cycle. It is the catch-all handler of the App
// router.
func (a *App) serveCycle(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, htmx.IsHTMX(r))
	rc := newRequestCycle(a, rw, r)

	for _, l := range a.cycleListeners {
		l.OnBeginRequest(rc)
	}
	rc.run()
	rc.detach()
	for _, l := range a.cycleListeners {
		l.OnEndRequest(rc)
	}
}

func (rc *RequestCycle) run() {
	t, err := rc.resolve()
	if err == nil {
		err = rc.process(t)
	}
	if err != nil {
		rc.handleException(err)
	}
}

// resolve finds the target answering the request URL.
func (rc *RequestCycle) resolve() (RequestTarget, error) {
	if t := rc.bufferedTarget(); t != nil {
		return t, nil
	}

	params, err := rc.app.coding.Decode(rc.url)
	if err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "Malformed request URL", WithError(err))
	}
	rc.params = params

	switch {
	case params.BookmarkablePage != "":
		if !rc.app.pages.Has(params.BookmarkablePage) {
			rc.logger.DebugContext(rc.Context(), "unknown page class", "page_class", params.BookmarkablePage)
			return &ErrorCodeTarget{Code: http.StatusNotFound}, nil
		}
		if params.HasInterface() {
			return rc.resolveBookmarkableListener(), nil
		}
		return &BookmarkablePageTarget{
			Class:   params.BookmarkablePage,
			Params:  params.Params,
			PageMap: params.PageMapName,
		}, nil

	case params.ComponentPath != "":
		return rc.resolveStored()

	case params.ResourceKey != "":
		h, ok := rc.app.resources.Lookup(params.ResourceKey)
		if !ok {
			return &ErrorCodeTarget{Code: http.StatusNotFound}, nil
		}
		return &SharedResourceTarget{Key: params.ResourceKey, Handler: h}, nil

	case params.IsEmpty():
		if rc.app.homePage == "" {
			return nil, ErrNoHomePage
		}
		return &BookmarkablePageTarget{Class: rc.app.homePage, PageMap: params.PageMapName}, nil
	}
	return &ExternalResourceTarget{Handler: rc.app.external}, nil
}

// resolveBookmarkableListener invokes the listener on the stored page when
// the session still has it, and on a fresh instance otherwise.
func (rc *RequestCycle) resolveBookmarkableListener() RequestTarget {
	p := rc.params
	fresh := &BookmarkableListenerTarget{
		Class:         p.BookmarkablePage,
		Params:        p.Params,
		PageMap:       p.PageMapName,
		ComponentPath: p.RelativePath(),
		Interface:     p.Interface,
		BehaviorID:    p.BehaviorID,
	}
	if id, ok := p.PageID(); !ok || id < 0 {
		return fresh
	}

	if lk := rc.sessionLock(); lk != nil {
		lk.Lock()
		defer lk.Unlock()
	}
	page, err := rc.lookupPage(p)
	if err != nil || page.Class() != p.BookmarkablePage {
		return fresh
	}
	if _, ok := page.Lookup(p.RelativePath()); !ok {
		return fresh
	}
	inv, err := rc.resolveListener(page, p.RelativePath(), p.Interface, p.BehaviorID)
	if err != nil {
		return fresh
	}
	return &ListenerInterfaceTarget{Invocation: inv}
}

// resolveStored addresses a page held in the session.
func (rc *RequestCycle) resolveStored() (RequestTarget, error) {
	if lk := rc.sessionLock(); lk != nil {
		lk.Lock()
		defer lk.Unlock()
	}
	p := rc.params
	page, err := rc.lookupPage(p)
	if err != nil {
		return nil, err
	}
	if !p.HasInterface() {
		return &PageTarget{Page: page, Policy: RedirectNever}, nil
	}
	inv, err := rc.resolveListener(page, p.RelativePath(), p.Interface, p.BehaviorID)
	if err != nil {
		return nil, err
	}
	return &ListenerInterfaceTarget{Invocation: inv}, nil
}

// bufferedTarget returns the response rendered for this URL by the request
// that redirected here.
func (rc *RequestCycle) bufferedTarget() RequestTarget {
	if rc.req.Method != http.MethodGet {
		return nil
	}
	sid := rc.SessionID()
	if sid == "" {
		return nil
	}
	b, ok, err := rc.app.buffers.Take(rc.Context(), sid, absolute(rc.url))
	if err != nil {
		rc.logger.WarnContext(rc.Context(), "take buffered response", "error", err, "url", absolute(rc.url))
		return nil
	}
	if !ok {
		return nil
	}
	return &BufferedResponseTarget{Buffer: b}
}

// process runs t and every target it switches to.
func (rc *RequestCycle) process(t RequestTarget) error {
	for {
		if t == nil {
			return errNilTarget
		}
		rc.target = t

		o := rc.step(t)
		switch o.Kind {
		case Continue:
			return nil
		case Fail:
			next, ok := rc.restartTarget(o.Err)
			if !ok {
				return o.Err
			}
			o.Target = next
		}

		rc.restarts++
		if rc.restarts > rc.app.settings.MaxRestarts {
			return fmt.Errorf("%w: last target %s", ErrTooManyRestarts, targetName(o.Target))
		}
		rc.logger.DebugContext(rc.Context(), "switching target",
			"from", targetName(t),
			"target", targetName(o.Target),
		)
		t = o.Target
	}
}

// step runs the events and the response of t under its lock.
func (rc *RequestCycle) step(t RequestTarget) (o Outcome) {
	if l, ok := t.(Locker); ok {
		if lk := l.Lock(rc); lk != nil {
			lk.Lock()
			defer lk.Unlock()
		}
	}
	defer func() {
		if r := recover(); r != nil {
			o = fail(&PanicError{Value: r, Stack: debug.Stack()})
		}
	}()

	if ep, ok := t.(EventProcessor); ok {
		if o = ep.ProcessEvents(rc); o.Kind != Continue {
			return o
		}
	}
	return t.Respond(rc)
}

// restartTarget turns the restart errors page code may return into the
// target they name.
func (rc *RequestCycle) restartTarget(err error) (RequestTarget, bool) {
	var (
		restart   *RestartResponseError
		intercept *RestartResponseAtInterceptPageError
	)
	switch {
	case errors.As(err, &restart) && restart.Target != nil:
		return restart.Target, true
	case errors.As(err, &intercept):
		return rc.interceptTarget(intercept), true
	}
	return nil, false
}

// handleException maps err to an error target and responds with it. A
// failing error target falls back to the exception page, then to a bare 500.
func (rc *RequestCycle) handleException(err error) {
	rc.err = err
	ctx := rc.Context()
	for _, l := range rc.app.cycleListeners {
		l.OnException(rc, err)
	}

	rc.logger.ErrorContext(ctx, "request failed",
		"error", err,
		"target", targetName(rc.target),
		"url", absolute(rc.url),
	)
	if rc.w.Written() {
		return
	}

	t := rc.app.mapper.Map(rc, err)
	perr := rc.process(t)
	if perr == nil || rc.w.Written() {
		return
	}
	rc.logger.ErrorContext(ctx, "error target failed", "error", perr, "target", targetName(t))

	if rc.app.settings.ExceptionDisplay != ShowNoExceptionPage {
		fallback := &TemplTarget{View: exceptionPage(err), Status: http.StatusInternalServerError, NoStore: true}
		if rc.process(fallback) == nil || rc.w.Written() {
			return
		}
	}
	setNoStore(rc.w.Header())
	http.Error(rc.w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// ServeHTTP lets the App be used as an http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}
