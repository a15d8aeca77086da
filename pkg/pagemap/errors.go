package pagemap

import "errors"

var (
	ErrPageNotFound       = errors.New("pagemap: page not found")
	ErrVersionUnavailable = errors.New("pagemap: page version unavailable")
)
