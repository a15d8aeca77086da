package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/dmitrymomot/loom/pkg/cache"
	"github.com/dmitrymomot/loom/pkg/coding"
	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/htmx"
	"github.com/dmitrymomot/loom/pkg/i18n"
	"github.com/dmitrymomot/loom/pkg/pagemap"
	"github.com/dmitrymomot/loom/pkg/session"
	"github.com/dmitrymomot/loom/pkg/urls"
)

// Session attribute keys.
const (
	localeAttr              = "loom.locale"
	styleAttr               = "loom.style"
	originalDestinationAttr = "loom.original_destination"
)

// pageState is the in-memory half of a session: its page maps and the lock
// serializing requests that touch them.
type pageState struct {
	mu   sync.Mutex
	maps *pagemap.Maps
}

// RequestCycle carries one request through target resolution, event
// processing and response. It implements component.Cycle.
type RequestCycle struct {
	app    *App
	w      *ResponseWriter
	req    *http.Request
	logger *slog.Logger
	url    urls.URL
	params coding.RequestParameters

	target   RequestTarget
	response RequestTarget
	restarts int
	err      error

	sess          *session.Session
	sessionLoaded bool
	state         *pageState

	locale    language.Tag
	localeSet bool
	touched   []*component.Page
	started   time.Time
}

func newRequestCycle(a *App, w *ResponseWriter, r *http.Request) *RequestCycle {
	return &RequestCycle{
		app:     a,
		w:       w,
		req:     r,
		logger:  a.logger,
		url:     urls.Parse(r.URL.RequestURI()),
		started: time.Now(),
	}
}

// Context returns the request context.
func (rc *RequestCycle) Context() context.Context { return rc.req.Context() }

// Request returns the HTTP request.
func (rc *RequestCycle) Request() *http.Request { return rc.req }

// Response returns the response writer.
func (rc *RequestCycle) Response() *ResponseWriter { return rc.w }

// Logger returns the application logger.
func (rc *RequestCycle) Logger() *slog.Logger { return rc.logger }

// FormValue returns the named form or query value.
func (rc *RequestCycle) FormValue(name string) string { return rc.req.FormValue(name) }

// IsHTMX reports whether the request was sent by htmx.
func (rc *RequestCycle) IsHTMX() bool { return htmx.IsHTMX(rc.req) }

// URL returns the request URL relative to the application root.
func (rc *RequestCycle) URL() urls.URL { return rc.url }

// Parameters returns the decoded request parameters.
func (rc *RequestCycle) Parameters() coding.RequestParameters { return rc.params }

// Target returns the target being processed, or the last one processed.
func (rc *RequestCycle) Target() RequestTarget { return rc.target }

// Err returns the error the request failed with, if any.
func (rc *RequestCycle) Err() error { return rc.err }

// Duration returns the time since the cycle started.
func (rc *RequestCycle) Duration() time.Duration { return time.Since(rc.started) }

// SetResponsePage answers the request with a new page of class.
func (rc *RequestCycle) SetResponsePage(class string, params *urls.PageParameters) {
	rc.response = &BookmarkablePageTarget{Class: class, Params: params}
}

// SetResponsePageInstance answers the request with p.
func (rc *RequestCycle) SetResponsePageInstance(p *component.Page) {
	rc.response = &PageTarget{Page: p}
}

// SetResponseTarget answers the request with t.
func (rc *RequestCycle) SetResponseTarget(t RequestTarget) {
	rc.response = t
}

func (rc *RequestCycle) takeResponse() RequestTarget {
	t := rc.response
	rc.response = nil
	return t
}

// Locale returns the locale of the request: the session choice, then the
// negotiated Accept-Language, then the application default.
func (rc *RequestCycle) Locale() language.Tag {
	if rc.localeSet {
		return rc.locale
	}
	rc.localeSet = true

	if v := rc.sessionAttr(localeAttr); v != "" {
		if tag, err := language.Parse(v); err == nil {
			rc.locale = tag
			return tag
		}
	}
	if tag, ok := LocaleFromContext(rc.Context()); ok {
		rc.locale = tag
		return tag
	}
	tag, err := language.Parse(rc.app.settings.DefaultLocale)
	if err != nil {
		tag = language.English
	}
	rc.locale = tag
	return tag
}

// SetLocale stores the locale in the session.
func (rc *RequestCycle) SetLocale(tag language.Tag) error {
	if err := rc.SetSessionAttr(localeAttr, tag.String()); err != nil {
		return err
	}
	rc.locale = tag
	rc.localeSet = true
	return nil
}

// Style returns the markup style variant of the session.
func (rc *RequestCycle) Style() string {
	if v := rc.sessionAttr(styleAttr); v != "" {
		return v
	}
	return rc.app.settings.Style
}

// SetStyle stores the markup style variant in the session.
func (rc *RequestCycle) SetStyle(style string) error {
	return rc.SetSessionAttr(styleAttr, style)
}

// Session returns the session of the request. When create is set a missing
// session is created and its cookie written with the response.
func (rc *RequestCycle) Session(create bool) (*session.Session, error) {
	if rc.sess != nil {
		return rc.sess, nil
	}
	sm := rc.app.sessions
	if !rc.sessionLoaded {
		rc.sessionLoaded = true
		s, err := sm.LoadSession(rc.Context(), rc.req)
		if err != nil {
			return nil, err
		}
		rc.sess = s
	}
	if rc.sess != nil || !create {
		return rc.sess, nil
	}

	s, err := sm.CreateSession(rc.Context(), rc.req)
	if err != nil {
		return nil, err
	}
	rc.sess = s
	rc.w.OnBeforeWrite(func() { sm.WriteCookie(rc.w, s) })
	rc.logger.DebugContext(rc.Context(), "session created", "session_id", s.ID)
	return s, nil
}

// SessionID returns the ID of an existing session, or "".
func (rc *RequestCycle) SessionID() string {
	s, err := rc.Session(false)
	if err != nil || s == nil {
		return ""
	}
	return s.ID
}

// SessionAttr returns a session attribute without creating a session.
func (rc *RequestCycle) SessionAttr(key string) string { return rc.sessionAttr(key) }

func (rc *RequestCycle) sessionAttr(key string) string {
	s, err := rc.Session(false)
	if err != nil || s == nil {
		return ""
	}
	v, _ := s.Get(key)
	return v
}

// SetSessionAttr sets a session attribute, creating the session if needed.
func (rc *RequestCycle) SetSessionAttr(key, value string) error {
	s, err := rc.Session(true)
	if err != nil {
		return err
	}
	s.Set(key, value)
	return nil
}

// RememberOriginalDestination keeps the request URL so a later
// ContinueToOriginalDestination can return to it.
func (rc *RequestCycle) RememberOriginalDestination() error {
	return rc.SetSessionAttr(originalDestinationAttr, absolute(rc.url))
}

// ContinueToOriginalDestination returns a RestartResponseError redirecting to
// the URL remembered by an intercept, or nil when there is none.
func (rc *RequestCycle) ContinueToOriginalDestination() error {
	s, err := rc.Session(false)
	if err != nil || s == nil {
		return err
	}
	dest, ok := s.Get(originalDestinationAttr)
	if !ok || dest == "" {
		return nil
	}
	s.Delete(originalDestinationAttr)
	return &RestartResponseError{Target: &RedirectTarget{URL: dest}}
}

// ContinueToOriginalDestination resumes the URL remembered when a listener
// or page restarted the response at an intercept page. It returns nil when
// there is nothing to resume or c is not a RequestCycle.
func ContinueToOriginalDestination(c component.Cycle) error {
	rc, ok := c.(*RequestCycle)
	if !ok {
		return nil
	}
	return rc.ContinueToOriginalDestination()
}

func (rc *RequestCycle) interceptTarget(e *RestartResponseAtInterceptPageError) RequestTarget {
	if err := rc.RememberOriginalDestination(); err != nil {
		rc.logger.WarnContext(rc.Context(), "remember original destination", "error", err)
	}
	return &BookmarkablePageTarget{Class: e.Class, Params: e.Params, Policy: RedirectAlways}
}

// pageMaps returns the page maps of the session.
func (rc *RequestCycle) pageMaps(create bool) (*pagemap.Maps, error) {
	st, err := rc.pageState(create)
	if err != nil || st == nil {
		return nil, err
	}
	return st.maps, nil
}

func (rc *RequestCycle) pageState(create bool) (*pageState, error) {
	if rc.state != nil {
		return rc.state, nil
	}
	s, err := rc.Session(create)
	if err != nil || s == nil {
		return nil, err
	}
	max := rc.app.settings.MaxPagesPerMap
	st, err := cache.GetOrSet(rc.Context(), rc.app.states, s.ID, func(context.Context) (*pageState, time.Duration, error) {
		return &pageState{maps: pagemap.NewMaps(max)}, rc.app.settings.PageStateTTL, nil
	})
	if err != nil {
		return nil, err
	}
	rc.state = st
	return st, nil
}

// sessionLock returns the lock of an existing session, or nil.
func (rc *RequestCycle) sessionLock() sync.Locker {
	st, err := rc.pageState(false)
	if err != nil || st == nil {
		return nil
	}
	return &st.mu
}

// lookupPage returns the stored page addressed by p.
func (rc *RequestCycle) lookupPage(p coding.RequestParameters) (*component.Page, error) {
	id, ok := p.PageID()
	if !ok {
		return nil, NewHTTPError(http.StatusBadRequest, "malformed component path", WithError(errors.New(p.ComponentPath)))
	}
	maps, err := rc.pageMaps(false)
	if err != nil {
		return nil, err
	}
	if maps == nil {
		return nil, ErrPageExpired
	}
	m, ok := maps.Lookup(p.PageMapName)
	if !ok {
		return nil, ErrPageExpired
	}
	page, err := m.Get(id, p.Version)
	if err != nil {
		return nil, errors.Join(ErrPageExpired, err)
	}
	rc.touch(page)
	return page, nil
}

// renderedBefore reports whether the default page map already holds a page
// of class, meaning another window shows it.
func (rc *RequestCycle) renderedBefore(class string) bool {
	maps, err := rc.pageMaps(false)
	if err != nil || maps == nil {
		return false
	}
	m, ok := maps.Lookup(coding.DefaultPageMap)
	if !ok {
		return false
	}
	_, ok = m.LastOfClass(class)
	return ok
}

// newPage runs the factory of class after the instantiation check.
func (rc *RequestCycle) newPage(class string, params *urls.PageParameters) (*component.Page, error) {
	if a := rc.app.authorizer; a != nil && !a.IsInstantiationAuthorized(class) {
		return nil, &AuthorizationError{Class: class, Action: "instantiate", Err: ErrUnauthorizedPage}
	}
	factory, ok := rc.app.pages.factory(class)
	if !ok {
		return nil, errors.Join(ErrUnknownPageClass, errors.New(class))
	}
	if params == nil {
		params = &urls.PageParameters{}
	}
	p, err := factory(rc, params)
	if err != nil {
		return nil, err
	}
	rc.touch(p)
	return p, nil
}

// storePage puts a stateful page into its page map, assigning an id.
func (rc *RequestCycle) storePage(p *component.Page) error {
	rc.touch(p)
	if p.IsStateless() {
		return nil
	}
	maps, err := rc.pageMaps(true)
	if err != nil {
		return err
	}
	maps.Get(p.PageMapName()).Put(p)
	return nil
}

func (rc *RequestCycle) touch(p *component.Page) {
	if p != nil && !slices.Contains(rc.touched, p) {
		rc.touched = append(rc.touched, p)
	}
}

// renderEnv returns the render collaborators with links relative to base.
func (rc *RequestCycle) renderEnv(base urls.URL) component.RenderEnv {
	env := component.RenderEnv{
		URLs:            &cycleURLs{rc: rc, renderer: urls.NewRenderer(base)},
		Bundles:         rc.app.bundles,
		HeaderStrategy:  component.HeaderStrategy(rc.app.settings.HeaderStrategy),
		StripWicketTags: rc.app.settings.StripWicketTags,
		Locale:          rc.Locale(),
		Style:           rc.Style(),
	}
	if rc.app.loader != nil {
		env.Loader = rc.app.loader
	}
	if rc.app.authorizer != nil {
		env.Authorizer = rc.app.authorizer
	}
	if rc.app.i18n != nil {
		env.Localizer = &localizer{svc: rc.app.i18n, lang: env.Locale.String(), namespace: rc.app.i18nNamespace}
	}
	return env
}

func (rc *RequestCycle) renderPage(p *component.Page, base urls.URL) (string, error) {
	rc.touch(p)
	return p.Render(rc.Context(), rc.renderEnv(base))
}

// clientURL is the URL the browser shows. htmx sends it along; otherwise it
// is the request URL.
func (rc *RequestCycle) clientURL() urls.URL {
	if v, ok := htmx.CurrentURL(rc.req); ok {
		u := urls.Parse(v)
		return urls.New(u.Segments(), u.Query()...)
	}
	return rc.url
}

func (rc *RequestCycle) writeHTML(status int, html string) {
	rc.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	rc.w.WriteHeader(status)
	_, _ = rc.w.Write([]byte(html))
}

func (rc *RequestCycle) redirect(u urls.URL) {
	loc := absolute(u)
	rc.logger.DebugContext(rc.Context(), "redirect", "url", loc)
	htmx.Redirect(rc.w, rc.req, loc)
}

// detach ends the request for every page it touched and saves the session.
func (rc *RequestCycle) detach() {
	if lk := rc.sessionLock(); lk != nil {
		lk.Lock()
		defer lk.Unlock()
	}
	for _, p := range rc.touched {
		p.Detach()
	}
	if rc.sess == nil {
		return
	}
	ctx := context.WithoutCancel(rc.Context())
	if err := rc.app.sessions.SaveSession(ctx, rc.sess); err != nil {
		rc.logger.ErrorContext(ctx, "save session", "error", err, "session_id", rc.sess.ID)
	}
	if rc.state != nil {
		_ = rc.app.states.Set(ctx, rc.sess.ID, rc.state, rc.app.settings.PageStateTTL)
	}
}

// absolute renders u as a path from the application root.
func absolute(u urls.URL) string {
	return urls.NewRenderer(urls.URL{}).RenderAbsolute(u)
}

// localizer resolves <wicket:message> keys through the i18n service.
type localizer struct {
	svc       *i18n.I18n
	lang      string
	namespace string
}

func (l *localizer) Localize(key string) (string, bool) {
	return l.svc.Lookup(l.lang, l.namespace, key)
}
