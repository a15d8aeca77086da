// Package hostrouter serves several loom applications from one listener,
// choosing by the Host header.
//
//	r := hostrouter.New(hostrouter.Routes{
//	    "admin.example.com": admin.Router(),
//	    "*.example.com":     shop.Router(),
//	}, landing.Router())
//
// Exact patterns win over wildcards. Matching ignores case and the port.
// Pages served through a wildcard read the matched subdomain with
// Subdomain(ctx).
package hostrouter
