// Package component implements the stateful component tree rendered against
// markup from package markup.
//
// A Page is the root of a tree. Containers own their children, ordered and
// unique by id. Children can be added explicitly or queued anywhere up the
// hierarchy and placed at render time by matching markup tags:
//
//	p := component.NewPage("Home", nil)
//	form := component.NewForm("form")
//	p.MustAdd(form)
//	_ = p.Queue(component.NewTextField("name", component.Of("")))
//	// <form wicket:id="form"><input wicket:id="name"></form> places "name"
//	// inside form.
//
// Panel, Border and Fragment render markup of their own and bound the search
// for queued components. A Border renders the markup between its tags at
// <wicket:body> through its BorderBody child.
//
// Rendering runs three passes over the tree: placement of queued components
// together with OnBeforeRender, header collection into a header.Response, and
// markup output with the aggregated header injected into <head>.
//
// Changes to visibility, models and children made by listeners are recorded
// per page version, so older versions can be restored with RollbackTo.
package component
