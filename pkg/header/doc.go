// Package header aggregates header contributions (scripts, stylesheets and
// raw head markup) into the <head> of a rendered page.
//
// Each item is rendered at most once per page. Dependencies render before the
// items that need them, and a loop in the dependency graph is reported as a
// *CycleError instead of recursing forever:
//
//	jquery := header.JS("lib", "jquery.js")
//	app := header.JS("app", "app.js", jquery)
//
//	resp := header.NewResponse(nil)
//	_ = resp.Render(app) // renders jquery.js, then app.js
//
// A Bundle stands in for its members: rendering any member emits the bundle
// reference once and marks every member rendered. A resource can belong to
// one bundle only.
//
// Priority(item) moves an item and its dependencies ahead of regular items.
package header
