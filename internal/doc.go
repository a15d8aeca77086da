// Package internal implements the loom request cycle.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/loom" instead, which re-exports the public API.
//
// # Request Cycle
//
// App routes every request that is not a static file or health probe to
// serveCycle, which creates a RequestCycle and:
//
//  1. resolves a RequestTarget from the URL decoded by the coding strategy,
//     answering first from a buffered response kept for that URL;
//  2. calls ProcessEvents when the target is an EventProcessor (listener
//     calls);
//  3. calls Respond on the target.
//
// Each step returns an Outcome. SwitchTarget replaces the target and runs
// again, bounded by Settings.MaxRestarts. Fail hands the error to the
// ExceptionMapper once.
//
// # Locking
//
// Targets touching stored pages implement Locker and return the session's
// page lock. The processor holds it for the whole step, so requests of one
// session never see a page mid-listener.
//
// # Render Strategy
//
// respondWithPage decides between rendering into the response, redirecting
// to the page URL and rendering ahead into a BufferStore before redirecting.
// decideRender holds the decision table.
//
// # Sessions
//
// Sessions are created lazily, the first time a stateful page is stored or
// an attribute set. The session cookie is written by a ResponseWriter hook
// before the first byte of the response.
package internal
