package internal

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/loom/pkg/urls"
)

var (
	ErrPageExpired          = errors.New("loom: page expired")
	ErrUnknownPageClass     = errors.New("loom: unknown page class")
	ErrUnknownResource      = errors.New("loom: unknown shared resource")
	ErrUnknownListener      = errors.New("loom: unknown listener interface")
	ErrListenerNotSupported = errors.New("loom: component does not implement the listener interface")
	ErrUnauthorizedListener = errors.New("loom: listener call not authorized")
	ErrUnauthorizedPage     = errors.New("loom: page instantiation not authorized")
	ErrTooManyRestarts      = errors.New("loom: too many response restarts")
	ErrNoHomePage           = errors.New("loom: no home page registered")
	ErrDuplicatePageClass   = errors.New("loom: page class already registered")
	ErrInvalidSettings      = errors.New("loom: invalid settings")
	ErrNoSession            = errors.New("loom: sessions are not configured")
)

// HTTPError answers the request with a status code. Returning it from a
// listener or page factory short-circuits the cycle with that code.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// Title is an optional title for the error page.
	Title string

	// Detail is an optional extended description.
	Detail string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Title = title
	}
}

func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Detail = detail
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// AsHTTPError extracts the HTTPError from an error chain.
// Returns nil if there is none.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// AuthorizationError reports a page or component the current user may not use.
type AuthorizationError struct {
	Class  string
	Path   string
	Action string
	Err    error
}

func (e *AuthorizationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s %s:%s", e.Err, e.Action, e.Class, e.Path)
	}
	return fmt.Sprintf("%s: %s %s", e.Err, e.Action, e.Class)
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// ListenerInvocationError wraps an error returned by a listener method.
type ListenerInvocationError struct {
	Method        string
	DeclaringType string
	Path          string
	Err           error
}

func (e *ListenerInvocationError) Error() string {
	return fmt.Sprintf("loom: %s.%s on %q: %v", e.DeclaringType, e.Method, e.Path, e.Err)
}

func (e *ListenerInvocationError) Unwrap() error { return e.Err }

// RestartResponseError abandons the current response and answers with
// Target instead. Listeners and page factories return it.
type RestartResponseError struct {
	Target RequestTarget
}

func (e *RestartResponseError) Error() string {
	return fmt.Sprintf("loom: restart response with %s", targetName(e.Target))
}

// RestartResponseAtInterceptPageError redirects to an intercept page, such as
// a sign-in page, and remembers the requested URL so the intercept page can
// continue to it with ContinueToOriginalDestination.
type RestartResponseAtInterceptPageError struct {
	Class  string
	Params *urls.PageParameters
}

func (e *RestartResponseAtInterceptPageError) Error() string {
	return "loom: restart response at intercept page " + e.Class
}

// RestartResponse returns an error answering the request with a new
// bookmarkable page of class.
func RestartResponse(class string, params *urls.PageParameters) error {
	return &RestartResponseError{Target: &BookmarkablePageTarget{Class: class, Params: params}}
}

// RestartResponseAtInterceptPage returns an error redirecting to class and
// remembering the current URL.
func RestartResponseAtInterceptPage(class string, params *urls.PageParameters) error {
	return &RestartResponseAtInterceptPageError{Class: class, Params: params}
}

// PanicError carries a panic recovered while processing a request.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
