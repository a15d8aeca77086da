package component

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateID        = errors.New("component: duplicate id")
	ErrEmptyID            = errors.New("component: empty id")
	ErrNilComponent       = errors.New("component: nil component")
	ErrUnresolvedTag      = errors.New("component: no component for markup tag")
	ErrNoAssociatedMarkup = errors.New("component: associated markup not found")
	ErrVersionUnavailable = errors.New("component: page version unavailable")
	ErrNotRendered        = errors.New("component: component was not rendered")
)

// DequeueError reports a markup tag that no added or queued component matches.
type DequeueError struct {
	ID     string
	Path   string
	Source string
	Line   int
	Col    int
	Err    error
}

func (e *DequeueError) Error() string {
	return fmt.Sprintf("%s: wicket:id=%q path=%q (%s:%d:%d)", e.Err, e.ID, e.Path, e.Source, e.Line, e.Col)
}

func (e *DequeueError) Unwrap() error { return e.Err }

func duplicateID(id, parent string) error {
	return errors.Join(ErrDuplicateID, fmt.Errorf("id %q under %q", id, parent))
}
