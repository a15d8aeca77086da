package tester

import (
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/htmx"
)

// MaxRedirects bounds the redirects followed by one request.
const MaxRedirects = 10

var errTooManyRedirects = errors.New("tester: too many redirects")

// Tester sends requests to a handler like a browser with a cookie jar.
type Tester struct {
	t      testing.TB
	server *httptest.Server
	client *http.Client
}

// Response is a completed request, after redirects.
type Response struct {
	Status int
	Header http.Header
	Body   string
	// URL is the final request URL.
	URL *url.URL
	// Redirects lists the Location of every redirect followed, in order.
	Redirects []string

	doc *goquery.Document
}

// New starts h behind a test server closed at the end of the test.
func New(t testing.TB, h http.Handler) *Tester {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	tt := &Tester{t: t, server: httptest.NewServer(h)}
	t.Cleanup(tt.server.Close)

	tt.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}
	return tt
}

// URL returns the base URL of the test server.
func (tt *Tester) URL() string { return tt.server.URL }

// NoFollow returns a Tester sharing the cookies of tt that stops at
// redirects instead of following them.
func (tt *Tester) NoFollow() *Tester {
	c := *tt
	client := *tt.client
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	c.client = &client
	return &c
}

// Get requests target, a path relative to the server root.
func (tt *Tester) Get(target string) *Response {
	tt.t.Helper()
	req, err := http.NewRequest(http.MethodGet, tt.resolve(nil, target), nil)
	require.NoError(tt.t, err)
	return tt.Do(req)
}

// PostForm posts values to target.
func (tt *Tester) PostForm(target string, values url.Values) *Response {
	tt.t.Helper()
	req, err := http.NewRequest(http.MethodPost, tt.resolve(nil, target), strings.NewReader(values.Encode()))
	require.NoError(tt.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return tt.Do(req)
}

// Do sends req and reads the response.
func (tt *Tester) Do(req *http.Request) *Response {
	tt.t.Helper()

	var redirects []string
	client := *tt.client
	policy := tt.client.CheckRedirect
	client.CheckRedirect = func(next *http.Request, via []*http.Request) error {
		if err := policy(next, via); err != nil {
			return err
		}
		redirects = append(redirects, next.URL.RequestURI())
		return nil
	}

	resp, err := client.Do(req)
	require.NoError(tt.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(tt.t, err)

	return &Response{
		Status:    resp.StatusCode,
		Header:    resp.Header,
		Body:      string(body),
		URL:       resp.Request.URL,
		Redirects: redirects,
	}
}

// Click follows the href of the first element of from matching selector.
func (tt *Tester) Click(from *Response, selector string) *Response {
	tt.t.Helper()
	href, ok := from.Find(selector).First().Attr("href")
	require.True(tt.t, ok, "no href on %q", selector)
	return tt.Get(tt.resolve(from.URL, href))
}

// Submit posts the first form of from matching selector. The values of its
// inputs are sent, with values replacing them.
func (tt *Tester) Submit(from *Response, selector string, values url.Values) *Response {
	tt.t.Helper()

	form := from.Find(selector).First()
	require.Equal(tt.t, 1, form.Length(), "no form %q", selector)

	data := url.Values{}
	form.Find("input[name], textarea[name], select[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		switch typ, _ := s.Attr("type"); typ {
		case "checkbox", "radio":
			if _, checked := s.Attr("checked"); !checked {
				return
			}
		case "submit", "button":
			return
		}
		v, ok := s.Attr("value")
		if !ok && goquery.NodeName(s) == "textarea" {
			v = s.Text()
		}
		data.Add(name, v)
	})
	for k, v := range values {
		data[k] = v
	}

	action, _ := form.Attr("action")
	method, _ := form.Attr("method")
	target := tt.resolve(from.URL, action)

	if strings.EqualFold(method, http.MethodGet) {
		u, err := url.Parse(target)
		require.NoError(tt.t, err)
		u.RawQuery = data.Encode()
		return tt.Get(u.String())
	}
	return tt.PostForm(target, data)
}

// HTMX sends an htmx GET to target, resolved against the page from shows.
func (tt *Tester) HTMX(from *Response, target string) *Response {
	tt.t.Helper()
	req, err := http.NewRequest(http.MethodGet, tt.resolve(from.URL, target), nil)
	require.NoError(tt.t, err)
	req.Header.Set(htmx.HeaderHXRequest, "true")
	req.Header.Set(htmx.HeaderHXCurrentURL, from.URL.String())
	return tt.NoFollow().Do(req)
}

// resolve turns ref into an absolute URL on the test server, relative to
// base when given.
func (tt *Tester) resolve(base *url.URL, ref string) string {
	tt.t.Helper()
	root, err := url.Parse(tt.server.URL + "/")
	require.NoError(tt.t, err)
	if base == nil {
		base = root
	}
	r, err := url.Parse(ref)
	require.NoError(tt.t, err)
	return base.ResolveReference(r).String()
}

// Document returns the parsed body.
func (r *Response) Document() *goquery.Document {
	if r.doc == nil {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(r.Body))
		if err != nil {
			doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
		}
		r.doc = doc
	}
	return r.doc
}

// Find returns the elements matching selector.
func (r *Response) Find(selector string) *goquery.Selection {
	return r.Document().Find(selector)
}

// Text returns the trimmed text of the elements matching selector.
func (r *Response) Text(selector string) string {
	return strings.TrimSpace(r.Find(selector).Text())
}

// Href returns the href of the first element matching selector.
func (r *Response) Href(selector string) string {
	v, _ := r.Find(selector).First().Attr("href")
	return v
}

// Has reports whether an element matches selector.
func (r *Response) Has(selector string) bool {
	return r.Find(selector).Length() > 0
}
