// Package middlewares provides net/http middleware for loom applications.
//
// # Request ID
//
// RequestID assigns a unique ID to each request for tracing and debugging.
// It reuses an ID sent by an upstream proxy or generates a ULID.
//
//	app := loom.New(
//	    loom.WithLogger("web", middlewares.RequestIDExtractor()),
//	    loom.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover catches panics outside the request cycle, in static file and
// external handlers. Panics in page code are mapped by the request cycle.
//
// # Timeout
//
// Timeout puts a deadline on the request context and answers 503 when the
// handler does not finish in time.
//
// # CORS
//
// CORS handles Cross-Origin Resource Sharing headers, for shared resources
// fetched from other origins.
//
//	loom.WithMiddleware(
//	    middlewares.CORS(middlewares.WithAllowOrigins("https://app.example.com")),
//	)
//
// # CSRF
//
// CSRF rejects listener calls (link clicks, form submits) coming from
// another origin, judged by the Origin or Referer header.
//
// # Locale
//
// Locale negotiates the request language from the "lang" query parameter,
// the "lang" cookie or Accept-Language. Pages without a session locale
// render in it.
//
//	loom.WithMiddleware(middlewares.Locale(translations))
//
// # Recommended Middleware Order
//
//	loom.WithMiddleware(
//	    middlewares.CORS(),      // First: handle preflight before other processing
//	    middlewares.RequestID(), // Second: assign ID for all subsequent logging
//	    middlewares.Recover(),   // Third: catch panics from handlers
//	    middlewares.CSRF(),
//	    middlewares.Locale(translations),
//	    middlewares.Timeout(5*time.Second),
//	)
package middlewares
