package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// Built-in pages used when no page class is configured for a failure.

func errorLayout(title string, body func(*strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
		b.WriteString(templ.EscapeString(title))
		b.WriteString("</title></head><body><h1>")
		b.WriteString(templ.EscapeString(title))
		b.WriteString("</h1>")
		body(&b)
		b.WriteString("</body></html>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func paragraph(b *strings.Builder, text string) {
	b.WriteString("<p>" + templ.EscapeString(text) + "</p>")
}

func homeLink(b *strings.Builder) {
	b.WriteString(`<p><a href="/">Return to home page</a></p>`)
}

// exceptionPage shows the error chain and, for panics, the stack.
func exceptionPage(err error) templ.Component {
	return errorLayout("Unexpected error", func(b *strings.Builder) {
		b.WriteString(`<pre class="error">`)
		b.WriteString(templ.EscapeString(err.Error()))
		b.WriteString("</pre>")
		if pe := asPanicError(err); pe != nil && len(pe.Stack) > 0 {
			b.WriteString(`<pre class="stack">`)
			b.WriteString(templ.EscapeString(string(pe.Stack)))
			b.WriteString("</pre>")
		}
		homeLink(b)
	})
}

func internalErrorPage() templ.Component {
	return errorLayout("Internal error", func(b *strings.Builder) {
		paragraph(b, "The server could not complete the request.")
		homeLink(b)
	})
}

func pageExpiredPage() templ.Component {
	return errorLayout("Page expired", func(b *strings.Builder) {
		paragraph(b, "The page you requested has expired.")
		homeLink(b)
	})
}

func accessDeniedPage() templ.Component {
	return errorLayout("Access denied", func(b *strings.Builder) {
		paragraph(b, "You do not have access to the page you requested.")
		homeLink(b)
	})
}

func httpErrorPage(e *HTTPError) templ.Component {
	title := e.Title
	if title == "" {
		title = fmt.Sprintf("%d %s", e.Code, http.StatusText(e.Code))
	}
	return errorLayout(title, func(b *strings.Builder) {
		if e.Message != "" {
			paragraph(b, e.Message)
		}
		if e.Detail != "" {
			paragraph(b, e.Detail)
		}
	})
}
