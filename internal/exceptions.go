package internal

import (
	"errors"
	"net/http"
)

// ExceptionMapper picks the target answering a failed request.
type ExceptionMapper interface {
	Map(rc *RequestCycle, err error) RequestTarget
}

// ExceptionMapperFunc adapts a function to ExceptionMapper.
type ExceptionMapperFunc func(rc *RequestCycle, err error) RequestTarget

func (f ExceptionMapperFunc) Map(rc *RequestCycle, err error) RequestTarget { return f(rc, err) }

// DefaultExceptionMapper maps errors the way the application settings say:
//
//   - HTTPError: its status code;
//   - unknown page classes and resources: 404;
//   - authorization failures: the access denied page, remembering the URL;
//   - expired pages: the page expired page;
//   - anything else: by Settings.ExceptionDisplay.
type DefaultExceptionMapper struct{}

func (DefaultExceptionMapper) Map(rc *RequestCycle, err error) RequestTarget {
	a := rc.app

	if he := AsHTTPError(err); he != nil {
		return &TemplTarget{View: httpErrorPage(he), Status: he.Code}
	}

	var authErr *AuthorizationError
	switch {
	case errors.Is(err, ErrUnknownPageClass), errors.Is(err, ErrUnknownResource):
		return &ErrorCodeTarget{Code: http.StatusNotFound}

	case errors.As(err, &authErr):
		if a.accessDeniedPage != "" {
			return rc.interceptTarget(&RestartResponseAtInterceptPageError{Class: a.accessDeniedPage})
		}
		return &TemplTarget{View: accessDeniedPage(), Status: http.StatusForbidden, NoStore: true}

	case errors.Is(err, ErrPageExpired):
		status := a.settings.PageExpiredStatus
		if a.pageExpiredPage != "" {
			return &BookmarkablePageTarget{Class: a.pageExpiredPage, Policy: RedirectNever, Status: status}
		}
		return &TemplTarget{View: pageExpiredPage(), Status: status, NoStore: true}
	}

	switch a.settings.ExceptionDisplay {
	case ShowInternalErrorPage:
		if a.internalErrorPage != "" {
			return &BookmarkablePageTarget{
				Class:  a.internalErrorPage,
				Policy: RedirectNever,
				Status: http.StatusInternalServerError,
			}
		}
		return &TemplTarget{View: internalErrorPage(), Status: http.StatusInternalServerError, NoStore: true}
	case ShowNoExceptionPage:
		return &ErrorCodeTarget{Code: http.StatusInternalServerError, NoStore: true, NoBody: true}
	}
	return &TemplTarget{View: exceptionPage(err), Status: http.StatusInternalServerError, NoStore: true}
}

func asPanicError(err error) *PanicError {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}
