package sanitizer

import (
	"bytes"
	"errors"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ErrMarkdown is returned when markdown cannot be converted.
var ErrMarkdown = errors.New("sanitizer: markdown conversion failed")

var (
	md        goldmark.Markdown
	ugcPolicy *bluemonday.Policy
	mdOnce    sync.Once
)

func initMarkdown() {
	mdOnce.Do(func() {
		md = goldmark.New(goldmark.WithExtensions(extension.GFM))
		ugcPolicy = bluemonday.UGCPolicy()
	})
}

// Markdown converts GitHub flavored markdown to HTML and sanitizes the result
// with the bluemonday UGC policy. Raw HTML in the source is dropped.
func Markdown(src string) (string, error) {
	initMarkdown()
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", errors.Join(ErrMarkdown, err)
	}
	return ugcPolicy.Sanitize(buf.String()), nil
}
