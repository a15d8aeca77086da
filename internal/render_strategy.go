package internal

import (
	"net/http"

	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/urls"
)

// RedirectPolicy overrides the render strategy for one target.
type RedirectPolicy int

const (
	// RedirectAuto lets the render strategy decide.
	RedirectAuto RedirectPolicy = iota
	// RedirectAlways redirects to the page URL before rendering.
	RedirectAlways
	// RedirectNever renders the page into the current response.
	RedirectNever
)

type renderMode int

const (
	renderDirect renderMode = iota
	renderRedirect
	renderBuffer
)

func (m renderMode) String() string {
	switch m {
	case renderDirect:
		return "direct"
	case renderRedirect:
		return "redirect"
	default:
		return "buffer"
	}
}

// renderInput is what decideRender looks at.
type renderInput struct {
	Strategy    RenderStrategy
	Policy      RedirectPolicy
	Ajax        bool
	SameURL     bool
	NewInstance bool
	Stateless   bool
}

// decideRender picks how a page reaches the client.
func decideRender(in renderInput) renderMode {
	onePass := in.Strategy == OnePass && in.Policy != RedirectAlways
	reuse := in.SameURL && !in.NewInstance && !in.Stateless
	switch {
	case in.Policy == RedirectNever,
		!in.Ajax && (onePass || reuse),
		in.SameURL && in.Strategy == RedirectToRender:
		return renderDirect
	case in.Policy == RedirectAlways,
		in.Strategy == RedirectToRender,
		in.Ajax && in.SameURL,
		!in.SameURL && in.NewInstance:
		return renderRedirect
	}
	return renderBuffer
}

// respondWithPage sends p to the client the way the render strategy says.
func (rc *RequestCycle) respondWithPage(p *component.Page, policy RedirectPolicy, status int) Outcome {
	if status == 0 {
		status = http.StatusOK
	}
	target, err := rc.pageURL(p)
	if err != nil {
		return fail(err)
	}
	mode := decideRender(renderInput{
		Strategy:    rc.app.settings.RenderStrategy,
		Policy:      policy,
		Ajax:        rc.IsHTMX(),
		SameURL:     sameURL(rc.url, target),
		NewInstance: p.IsNewInstance(),
		Stateless:   p.IsStateless(),
	})
	rc.logger.DebugContext(rc.Context(), "rendering page",
		"page_class", p.Class(),
		"page_id", p.PageID(),
		"mode", mode.String(),
		"url", absolute(target),
	)

	switch mode {
	case renderDirect:
		return rc.writePage(p, rc.url, status)
	case renderRedirect:
		rc.redirect(target)
		return done()
	}
	return rc.redirectToBuffer(p, target, status)
}

// writePage renders p against base into the response.
func (rc *RequestCycle) writePage(p *component.Page, base urls.URL, status int) Outcome {
	html, err := rc.renderPage(p, base)
	if err != nil {
		return fail(err)
	}
	if err := rc.storePage(p); err != nil {
		return fail(err)
	}
	rc.writeHTML(status, html)
	return done()
}

// redirectToBuffer renders p against its own URL, keeps the result and
// redirects there. The following request is answered from the buffer.
func (rc *RequestCycle) redirectToBuffer(p *component.Page, target urls.URL, status int) Outcome {
	html, err := rc.renderPage(p, target)
	if err != nil {
		return fail(err)
	}

	// Rendering may change the page URL, e.g. a page turning stateless.
	// Relative links must match the URL the markup is finally served at.
	rendered := target
	if target, err = rc.pageURL(p); err != nil {
		return fail(err)
	}

	if sameURL(rc.url, target) || p.IsStateless() {
		if depth(rc.url) != depth(rendered) {
			if html, err = rc.renderPage(p, rc.url); err != nil {
				return fail(err)
			}
		}
		if err := rc.storePage(p); err != nil {
			return fail(err)
		}
		rc.writeHTML(status, html)
		return done()
	}

	if depth(target) != depth(rendered) {
		if html, err = rc.renderPage(p, target); err != nil {
			return fail(err)
		}
	}

	if err := rc.storePage(p); err != nil {
		return fail(err)
	}
	s, err := rc.Session(true)
	if err != nil {
		return fail(err)
	}
	buf := &BufferedResponse{
		Header: map[string][]string{"Content-Type": {"text/html; charset=utf-8"}},
		Body:   []byte(html),
		Status: status,
	}
	if err := rc.app.buffers.Put(rc.Context(), s.ID, absolute(target), buf); err != nil {
		return fail(err)
	}
	rc.redirect(target)
	return done()
}

func sameURL(a, b urls.URL) bool { return absolute(a) == absolute(b) }

func depth(u urls.URL) int { return len(u.PathSegments()) }
