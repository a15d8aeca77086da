package middlewares

import (
	"errors"

	"github.com/dmitrymomot/loom/internal"
)

// PanicError represents a recovered panic.
type PanicError = internal.PanicError

// ErrCrossOrigin is reported when CSRF rejects a request.
var ErrCrossOrigin = errors.New("middlewares: cross-origin request rejected")

// IsPanicError returns true if the error is a PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
