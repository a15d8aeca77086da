package urls

import "errors"

var (
	// ErrParameterNotFound is returned when a named page parameter is missing.
	ErrParameterNotFound = errors.New("urls: parameter not found")

	// ErrInvalidParameter is returned when a parameter cannot be converted.
	ErrInvalidParameter = errors.New("urls: invalid parameter value")
)
