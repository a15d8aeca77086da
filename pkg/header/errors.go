package header

import (
	"errors"
	"strings"
)

var (
	// ErrDependencyCycle is wrapped by CycleError.
	ErrDependencyCycle = errors.New("header: dependency cycle")

	// ErrAlreadyBundled is returned when a resource is added to a second bundle.
	ErrAlreadyBundled = errors.New("header: resource already belongs to a bundle")

	// ErrEmptyBundle is returned when a bundle has no members.
	ErrEmptyBundle = errors.New("header: bundle has no members")
)

// CycleError reports the chain of item keys that loops back on itself.
// The first and last entries are equal.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return ErrDependencyCycle.Error() + ": " + strings.Join(e.Chain, " -> ")
}

func (e *CycleError) Unwrap() error { return ErrDependencyCycle }
