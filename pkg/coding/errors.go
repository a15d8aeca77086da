package coding

import "errors"

var (
	ErrMalformedInterface    = errors.New("coding: malformed wicket:interface parameter")
	ErrMalformedBookmarkable = errors.New("coding: malformed wicket:bookmarkablePage parameter")
	ErrInvalidMount          = errors.New("coding: invalid mount path")
	ErrMountExists           = errors.New("coding: path already mounted")
)
