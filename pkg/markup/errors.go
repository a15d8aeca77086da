package markup

import (
	"errors"
	"fmt"
)

var (
	// ErrUnclosedTag is returned when a component or wicket tag has no matching close tag.
	ErrUnclosedTag = errors.New("markup: tag is not closed")

	// ErrUnexpectedCloseTag is returned when a close tag has no matching open component tag.
	ErrUnexpectedCloseTag = errors.New("markup: unexpected close tag")

	// ErrNoChildTag is returned when inherited markup lacks <wicket:child>.
	ErrNoChildTag = errors.New("markup: base markup has no <wicket:child> tag")

	// ErrNoExtendTag is returned when derived markup lacks <wicket:extend>.
	ErrNoExtendTag = errors.New("markup: derived markup has no <wicket:extend> tag")

	// ErrNotFound is returned when no markup resource exists for a class.
	ErrNotFound = errors.New("markup: resource not found")

	// ErrEmptyID is returned for a wicket:id attribute without a value.
	ErrEmptyID = errors.New("markup: empty wicket:id")
)

// ParseError describes a markup inconsistency and where it was found.
type ParseError struct {
	Err    error
	Source string
	Tag    string
	Line   int
	Col    int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (%s:%d:%d <%s>)", e.Err.Error(), e.Source, e.Line, e.Col, e.Tag)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
