// Package markup parses HTML templates into the immutable form the component
// tree renders from.
//
// Only tags the framework needs are kept as Tag elements: tags carrying a
// wicket:id attribute, wicket:* tags and the document head. Everything else
// stays raw markup and is written back unchanged. Parsing is based on the
// golang.org/x/net/html tokenizer, so sloppy HTML is tolerated, but component
// tags must be closed properly:
//
//	m, err := markup.ParseString(`<ul><li wicket:id="row"><span wicket:id="name"/></li></ul>`, "List")
//	// m contains: raw "<ul>", open tag row, open-close tag name, close tag row, raw "</ul>"
//
// Structural tags:
//
//   - wicket:panel, wicket:border, wicket:fragment mark the markup a panel,
//     border or fragment renders
//   - wicket:body marks where a border renders its body
//   - wicket:child and wicket:extend implement markup inheritance (see Merge)
//   - wicket:head sections contribute to the page head
//   - wicket:container binds a component without rendering a tag
//   - wicket:enclosure and wicket:message are resolved automatically
//   - wicket:remove content is dropped at parse time
//
// Loader finds markup files for a class with style and locale variants, using
// golang.org/x/text/language parent chains, and caches parsed results in a
// cache.Cache with singleflight protection against concurrent loads.
package markup
