package session

import "errors"

var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired is returned when a session has expired.
	ErrExpired = errors.New("session: expired")

	ErrEncodeValues = errors.New("session: failed to encode values")
	ErrDecodeValues = errors.New("session: failed to decode values")
	ErrStore        = errors.New("session: store operation failed")
	ErrSchedule     = errors.New("session: invalid janitor schedule")
)
