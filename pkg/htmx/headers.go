package htmx

// Request headers sent by htmx.
const (
	HeaderHXRequest    = "HX-Request"
	HeaderHXBoosted    = "HX-Boosted"
	HeaderHXCurrentURL = "HX-Current-URL"
	HeaderHXTarget     = "HX-Target"
)

// Response headers understood by htmx.
const (
	HeaderHXRedirect = "HX-Redirect"
	HeaderHXRefresh  = "HX-Refresh"
)
