package internal_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/internal"
	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/urls"
)

// recorder is a RequestCycleListener keeping what it saw.
type recorder struct {
	mu     sync.Mutex
	begins int
	ends   int
	errs   []error
}

func (r *recorder) OnBeginRequest(*internal.RequestCycle) {
	r.mu.Lock()
	r.begins++
	r.mu.Unlock()
}

func (r *recorder) OnEndRequest(*internal.RequestCycle) {
	r.mu.Lock()
	r.ends++
	r.mu.Unlock()
}

func (r *recorder) OnException(_ *internal.RequestCycle, err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *recorder) errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// syncBuffer is a log sink written by the server goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Lines() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(line), &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

func labelPage(class, text string) internal.PageFactory {
	return func(_ component.Cycle, params *urls.PageParameters) (*component.Page, error) {
		p := component.NewPage(class, params)
		p.MustAdd(component.NewLabel("text", component.Of(text)))
		return p, nil
	}
}

const labelMarkup = `<p id="text" wicket:id="text"></p>`

func TestRequestCycle_PageExpired(t *testing.T) {
	t.Parallel()

	t.Run("listener url without a session", func(t *testing.T) {
		t.Parallel()
		var renders atomic.Int32
		tt := counterApp(t, &renders)

		resp := tt.Get("/?wicket:interface=:3:inc::ILinkListener::")
		require.Equal(t, 200, resp.Status)
		require.Equal(t, "Page expired", resp.Text("h1"))
		require.Contains(t, resp.Header.Get("Cache-Control"), "no-store")
	})

	t.Run("unknown page id", func(t *testing.T) {
		t.Parallel()
		var renders atomic.Int32
		tt := counterApp(t, &renders)

		home := tt.Get("/")
		href := strings.Replace(home.Href("#inc"), ":0:", ":42:", 1)
		resp := tt.Get(href)
		require.Equal(t, "Page expired", resp.Text("h1"))
	})

	t.Run("unknown component path", func(t *testing.T) {
		t.Parallel()
		var renders atomic.Int32
		tt := counterApp(t, &renders)

		home := tt.Get("/")
		href := strings.Replace(home.Href("#inc"), ":inc:", ":gone:", 1)
		resp := tt.Get(href)
		require.Equal(t, "Page expired", resp.Text("h1"))
		require.EqualValues(t, 1, renders.Load())
	})

	t.Run("configured page and status", func(t *testing.T) {
		t.Parallel()
		var renders atomic.Int32
		s := internal.DefaultSettings()
		s.PageExpiredStatus = http.StatusGone
		tt := newTester(t,
			map[string]string{"Counter": counterMarkup, "Expired": labelMarkup},
			internal.WithSettings(s),
			internal.WithHomePage("Counter"),
			internal.WithPage("Counter", counterPage(&renders)),
			internal.WithPageExpiredPage("Expired"),
			internal.WithPage("Expired", labelPage("Expired", "come back later")),
		)

		resp := tt.Get("/?wicket:interface=:3:inc::ILinkListener::")
		require.Equal(t, http.StatusGone, resp.Status)
		require.Empty(t, resp.Redirects)
		require.Equal(t, "come back later", resp.Text("#text"))
	})
}

const signupMarkup = `<form id="f" wicket:id="form"><input wicket:id="name"></form>
<span id="out" wicket:id="out"></span>`

func signupPage(enabled bool, submitted *atomic.Int32) internal.PageFactory {
	return func(_ component.Cycle, params *urls.PageParameters) (*component.Page, error) {
		p := component.NewPage("Signup", params)
		name := component.Of("")
		form := component.NewForm("form").OnSubmit(func(component.Cycle) error {
			submitted.Add(1)
			return nil
		})
		form.MustAdd(component.NewTextField("name", name))
		form.SetEnabled(enabled)
		p.MustAdd(form, component.NewLabel("out", name))
		return p, nil
	}
}

func TestRequestCycle_FormSubmit(t *testing.T) {
	t.Parallel()

	t.Run("valid input updates the model and renders from the buffer", func(t *testing.T) {
		t.Parallel()
		var submitted atomic.Int32
		tt := newTester(t,
			map[string]string{"Signup": signupMarkup},
			internal.WithHomePage("Signup"),
			internal.WithPage("Signup", signupPage(true, &submitted)),
		)

		resp := tt.Submit(tt.Get("/"), "#f", url.Values{"name": {"ada"}})
		require.Equal(t, 200, resp.Status)
		require.Len(t, resp.Redirects, 1)
		require.Equal(t, "ada", resp.Text("#out"))
		require.EqualValues(t, 1, submitted.Load())
	})

	t.Run("disabled form is not submitted", func(t *testing.T) {
		t.Parallel()
		var submitted atomic.Int32
		rec := &recorder{}
		tt := newTester(t,
			map[string]string{"Signup": signupMarkup},
			internal.WithHomePage("Signup"),
			internal.WithPage("Signup", signupPage(false, &submitted)),
			internal.WithCycleListener(rec),
		)

		resp := tt.Submit(tt.Get("/"), "#f", url.Values{"name": {"ada"}})
		require.Equal(t, http.StatusForbidden, resp.Status)
		require.Equal(t, "Access denied", resp.Text("h1"))
		require.Zero(t, submitted.Load())

		errs := rec.errors()
		require.Len(t, errs, 1)
		var authErr *internal.AuthorizationError
		require.ErrorAs(t, errs[0], &authErr)
		require.Equal(t, "form", authErr.Path)
	})

	t.Run("disabled form with access denied page", func(t *testing.T) {
		t.Parallel()
		var submitted atomic.Int32
		tt := newTester(t,
			map[string]string{"Signup": signupMarkup, "Denied": labelMarkup},
			internal.WithHomePage("Signup"),
			internal.WithPage("Signup", signupPage(false, &submitted)),
			internal.WithAccessDeniedPage("Denied"),
			internal.WithPage("Denied", labelPage("Denied", "no entry")),
		)

		resp := tt.Submit(tt.Get("/"), "#f", url.Values{"name": {"ada"}})
		require.Equal(t, 200, resp.Status)
		require.NotEmpty(t, resp.Redirects)
		require.Equal(t, "no entry", resp.Text("#text"))
		require.Zero(t, submitted.Load())
	})
}

func TestRequestCycle_InterceptPage(t *testing.T) {
	t.Parallel()

	tt := newTester(t,
		map[string]string{
			"Secret": labelMarkup,
			"Login":  `<a id="login" wicket:id="login">sign in</a>`,
		},
		internal.WithPage("Secret", func(c component.Cycle, params *urls.PageParameters) (*component.Page, error) {
			if c.(*internal.RequestCycle).SessionAttr("user") == "" {
				return nil, internal.RestartResponseAtInterceptPage("Login", nil)
			}
			return labelPage("Secret", "classified")(c, params)
		}),
		internal.WithPage("Login", func(_ component.Cycle, params *urls.PageParameters) (*component.Page, error) {
			p := component.NewPage("Login", params)
			p.MustAdd(component.NewLink("login", func(c component.Cycle) error {
				if err := c.(*internal.RequestCycle).SetSessionAttr("user", "ada"); err != nil {
					return err
				}
				return internal.ContinueToOriginalDestination(c)
			}))
			return p, nil
		}),
	)

	login := tt.Get("/?wicket:bookmarkablePage=:Secret")
	require.Equal(t, 200, login.Status)
	require.True(t, login.Has("#login"))

	secret := tt.Click(login, "#login")
	require.Equal(t, 200, secret.Status)
	require.Equal(t, "classified", secret.Text("#text"))
	require.Contains(t, secret.Redirects, "/?wicket:bookmarkablePage=:Secret")

	// The destination is consumed.
	again := tt.Get("/?wicket:bookmarkablePage=:Secret")
	require.Equal(t, "classified", again.Text("#text"))
}

func TestRequestCycle_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unknown page class", func(t *testing.T) {
		t.Parallel()
		tt := newTester(t, nil)
		require.Equal(t, http.StatusNotFound, tt.Get("/?wicket:bookmarkablePage=:Nope").Status)
	})

	t.Run("malformed interface parameter", func(t *testing.T) {
		t.Parallel()
		tt := newTester(t, nil)
		resp := tt.Get("/?wicket:interface=bad")
		require.Equal(t, http.StatusBadRequest, resp.Status)
		require.Contains(t, resp.Body, "Malformed request URL")
	})

	t.Run("no home page", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		tt := newTester(t, nil, internal.WithCycleListener(rec))
		require.Equal(t, http.StatusInternalServerError, tt.Get("/").Status)
		require.ErrorIs(t, rec.errors()[0], internal.ErrNoHomePage)
	})

	t.Run("http error from a page factory", func(t *testing.T) {
		t.Parallel()
		tt := newTester(t, nil,
			internal.WithPage("Article", func(component.Cycle, *urls.PageParameters) (*component.Page, error) {
				return nil, internal.NewHTTPError(http.StatusNotFound, "Article not found")
			}),
		)
		resp := tt.Get("/?wicket:bookmarkablePage=:Article")
		require.Equal(t, http.StatusNotFound, resp.Status)
		require.Equal(t, "404 Not Found", resp.Text("h1"))
		require.Contains(t, resp.Body, "Article not found")
	})

	t.Run("restart loop is capped", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		tt := newTester(t, nil,
			internal.WithCycleListener(rec),
			internal.WithPage("Loop", func(component.Cycle, *urls.PageParameters) (*component.Page, error) {
				return nil, internal.RestartResponse("Loop", nil)
			}),
		)
		resp := tt.Get("/?wicket:bookmarkablePage=:Loop")
		require.Equal(t, http.StatusInternalServerError, resp.Status)
		require.Equal(t, "Unexpected error", resp.Text("h1"))

		errs := rec.errors()
		require.Len(t, errs, 1)
		require.ErrorIs(t, errs[0], internal.ErrTooManyRestarts)
	})

	t.Run("listener error shows the exception page", func(t *testing.T) {
		t.Parallel()
		tt := newTester(t,
			map[string]string{"Fail": `<a id="boom" wicket:id="boom">boom</a>`},
			internal.WithHomePage("Fail"),
			internal.WithPage("Fail", func(_ component.Cycle, params *urls.PageParameters) (*component.Page, error) {
				p := component.NewPage("Fail", params)
				p.MustAdd(component.NewLink("boom", func(component.Cycle) error {
					return errors.New("boom went the link")
				}))
				return p, nil
			}),
		)
		resp := tt.Click(tt.Get("/"), "#boom")
		require.Equal(t, http.StatusInternalServerError, resp.Status)
		require.Contains(t, resp.Text("pre.error"), "boom went the link")
		require.Contains(t, resp.Header.Get("Cache-Control"), "no-store")
	})

	t.Run("internal error page hides details", func(t *testing.T) {
		t.Parallel()
		tt := newTester(t, nil,
			internal.WithExceptionDisplay(internal.ShowInternalErrorPage),
			internal.WithPage("Panic", func(component.Cycle, *urls.PageParameters) (*component.Page, error) {
				panic("secret detail")
			}),
		)
		resp := tt.Get("/?wicket:bookmarkablePage=:Panic")
		require.Equal(t, http.StatusInternalServerError, resp.Status)
		require.Equal(t, "Internal error", resp.Text("h1"))
		require.NotContains(t, resp.Body, "secret detail")
	})

	t.Run("no exception page sends a bare status", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		tt := newTester(t, nil,
			internal.WithCycleListener(rec),
			internal.WithExceptionDisplay(internal.ShowNoExceptionPage),
			internal.WithPage("Panic", func(component.Cycle, *urls.PageParameters) (*component.Page, error) {
				panic("secret detail")
			}),
		)
		resp := tt.Get("/?wicket:bookmarkablePage=:Panic")
		require.Equal(t, http.StatusInternalServerError, resp.Status)
		require.Empty(t, resp.Body)
		require.Contains(t, resp.Header.Get("Cache-Control"), "no-store")

		var pe *internal.PanicError
		require.ErrorAs(t, rec.errors()[0], &pe)
		require.Equal(t, "secret detail", pe.Value)
	})

	t.Run("custom exception mapper", func(t *testing.T) {
		t.Parallel()
		tt := newTester(t, nil,
			internal.WithExceptionMapper(internal.ExceptionMapperFunc(func(*internal.RequestCycle, error) internal.RequestTarget {
				return &internal.ErrorCodeTarget{Code: http.StatusTeapot, Message: "mapped"}
			})),
		)
		resp := tt.Get("/")
		require.Equal(t, http.StatusTeapot, resp.Status)
		require.Equal(t, "mapped\n", resp.Body)
	})
}

func TestRequestCycle_Resources(t *testing.T) {
	t.Parallel()

	tt := newTester(t, nil,
		internal.WithResource("logo.txt", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = fmt.Fprint(w, "logo")
		})),
		internal.WithExternalHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, "external "+r.URL.Path)
		})),
	)

	t.Run("shared resource", func(t *testing.T) {
		t.Parallel()
		resp := tt.Get("/resources/logo.txt")
		require.Equal(t, 200, resp.Status)
		require.Equal(t, "logo", resp.Body)
	})

	t.Run("unknown resource", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, http.StatusNotFound, tt.Get("/resources/missing.txt").Status)
	})

	t.Run("external handler", func(t *testing.T) {
		t.Parallel()
		resp := tt.Get("/robots.txt")
		require.Equal(t, 200, resp.Status)
		require.Equal(t, "external /robots.txt", resp.Body)
	})

	t.Run("no external handler", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, http.StatusNotFound, newTester(t, nil).Get("/robots.txt").Status)
	})
}

func TestRequestCycle_Listeners(t *testing.T) {
	t.Parallel()

	var renders atomic.Int32
	rec := &recorder{}
	logs := &syncBuffer{}
	tt := counterApp(t, &renders,
		internal.WithCycleListener(rec, internal.NewRequestLogger(slog.New(slog.NewJSONHandler(logs, nil)), slog.LevelInfo)),
	)

	tt.Get("/")

	rec.mu.Lock()
	require.Equal(t, 2, rec.begins)
	require.Equal(t, 2, rec.ends)
	rec.mu.Unlock()
	require.Empty(t, rec.errors())

	lines := logs.Lines()
	require.Len(t, lines, 2)
	first, second := lines[0], lines[1]

	require.Equal(t, "request", first["msg"])
	require.Equal(t, "GET", first["method"])
	require.Equal(t, "/", first["url"])
	require.Equal(t, "BookmarkablePageTarget", first["target"])
	require.EqualValues(t, http.StatusFound, first["status"])
	require.NotEmpty(t, first["session_id"])

	require.Equal(t, "/?wicket:interface=:0::::", second["url"])
	require.Equal(t, "PageTarget", second["target"])
	require.EqualValues(t, http.StatusOK, second["status"])
	require.Equal(t, first["session_id"], second["session_id"])
}

func TestListenerState_String(t *testing.T) {
	t.Parallel()

	states := map[internal.ListenerState]string{
		internal.StateResolved:     "resolved",
		internal.StateInvoking:     "invoking",
		internal.StateNormal:       "normal",
		internal.StateRedirected:   "redirected",
		internal.StateUnauthorized: "unauthorized",
		internal.StateFailed:       "failed",
	}
	for s, want := range states {
		require.Equal(t, want, s.String())
	}
	require.Equal(t, "ListenerState(99)", internal.ListenerState(99).String())
}
