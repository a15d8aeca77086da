// Package urls provides the immutable URL value used by the request cycle,
// page parameters, and a renderer for relative links.
//
// A URL is an ordered list of decoded path segments plus ordered query
// parameters. Parsing and encoding round-trip on the decoded form:
//
//	u := urls.Parse("/shop/items?sort=asc&page=2")
//	u.Segments()           // ["", "shop", "items"]
//	u.QueryValue("page")   // "2", true
//	urls.Parse(u.String()) // structurally equal to u
//
// Renderer produces links that resolve correctly from the URL the browser is at:
//
//	r := urls.NewRenderer(urls.Parse("shop/items"))
//	r.RenderRelative(urls.Parse("wicket/page?x=1")) // "../wicket/page?x=1"
package urls
