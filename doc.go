// Package loom is a component oriented web framework. Pages are trees of
// stateful components bound to HTML markup by wicket:id attributes. A link
// or form rendered by a component calls back into the same component
// instance on the next request.
//
// # Quick Start
//
// Register page classes with factories and serve them:
//
//	app := loom.New(
//	    loom.WithHomePage("Home"),
//	    loom.WithPage("Home", func(c component.Cycle, p *loom.PageParameters) (*component.Page, error) {
//	        page := component.NewPage("Home", p)
//	        count := 0
//	        err := page.Add(
//	            component.NewLabel("count", component.ReadOnly(func() any { return count })),
//	            component.NewLink("inc", func(component.Cycle) error {
//	                count++
//	                return nil
//	            }),
//	        )
//	        if err != nil {
//	            return nil, err
//	        }
//	        return page, nil
//	    }),
//	    loom.WithMarkup(templates, "markup"),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// with markup/Home.html:
//
//	<p>Clicked <span wicket:id="count"></span> times</p>
//	<a wicket:id="inc">again</a>
//
// # Request Cycle
//
// Every request is decoded into a request target: a bookmarkable page, a
// listener on a stored page, a shared resource or a static file. Listener
// targets run the listener first, then the page is sent the way the render
// strategy says. The default, RedirectToBuffer, renders the page, keeps the
// result and redirects to the page URL, so reloads never repeat a form post.
//
// # Pages and Page Maps
//
// Stateful pages are kept per session in page maps, one per browser
// window, bounded by Settings.MaxPagesPerMap. Pages declared with
// component.Stateless() are rebuilt from their URL and never stored.
//
// # Errors
//
// Listeners and page factories return errors. RestartResponse and
// RestartResponseAtInterceptPage switch the response; HTTPError answers with
// a status code; anything else goes through the ExceptionMapper.
//
// # Settings
//
// Settings are read from YAML with LoadSettings and tuned with options:
//
//	render_strategy: redirect_to_buffer
//	exception_display: internal_error_page
//	max_pages_per_map: 10
//	automatic_multi_window_support: true
package loom
