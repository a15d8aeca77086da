// Package guestbook is the demo application served by the loom command.
package guestbook

import (
	"embed"
	"io/fs"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/loom"
	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/i18n"
)

//go:embed markup/*.html
var markupFS embed.FS

//go:embed messages
var messagesFS embed.FS

//go:embed static/guestbook.css
var staticFS embed.FS

// Namespace is the i18n namespace of the demo messages.
const Namespace = "guestbook"

// MaxTextLength bounds a single entry.
const MaxTextLength = 280

// Entry is one signature.
type Entry struct {
	Name string
	Text string
	At   time.Time
}

// Book keeps the entries in memory.
type Book struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{now: time.Now}
}

// Sign adds an entry.
func (b *Book) Sign(name, text string) Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := Entry{Name: name, Text: text, At: b.now().UTC()}
	b.entries = append(b.entries, e)
	return e
}

// Entries returns the entries, newest first.
func (b *Book) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := slices.Clone(b.entries)
	slices.Reverse(out)
	return out
}

// Len returns the number of entries.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Messages loads the English and German messages.
func Messages() (*i18n.I18n, error) {
	dir, err := fs.Sub(messagesFS, "messages")
	if err != nil {
		return nil, err
	}
	return i18n.New(
		i18n.WithDefaultLanguage("en"),
		i18n.WithLanguages("en", "de"),
		i18n.WithYAMLDir(dir),
	)
}

// Options registers the demo pages on an App. Home is the home page; About
// is stateless and mounted at /about.
func Options(b *Book, messages *i18n.I18n) []loom.Option {
	return []loom.Option{
		loom.WithMarkup(markupFS, "markup"),
		loom.WithI18n(messages, Namespace),
		loom.WithHomePage("Home"),
		loom.WithPage("Home", newHome(b)),
		loom.WithPage("About", newAbout(b)),
		loom.WithMount("/about", "About"),
		loom.WithResource("guestbook.css", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.ServeFileFS(w, r, staticFS, "static/guestbook.css")
		})),
	}
}

func layout(p *component.Page) error {
	return p.Add(
		component.NewBookmarkablePageLink("nav-home", "Home", nil),
		component.NewBookmarkablePageLink("nav-about", "About", nil),
	)
}

func newHome(b *Book) loom.PageFactory {
	return func(_ component.Cycle, params *loom.PageParameters) (*component.Page, error) {
		p := component.NewPage("Home", params, component.Extends("Layout"))
		if err := layout(p); err != nil {
			return nil, err
		}

		name := component.Of("")
		text := component.Of("")
		form := component.NewForm("sign").OnSubmit(func(component.Cycle) error {
			b.Sign(name.Object().(string), text.Object().(string))
			name.SetObject("")
			text.SetObject("")
			return nil
		})
		form.MustAdd(
			component.NewTextField("name", name).Label("Name").Required().AddValidator(component.MaxLength(64)),
			component.NewTextField("text", text).Label("Message").Required().AddValidator(component.MaxLength(MaxTextLength)),
		)

		entries := component.NewListView("entries", b.Entries, func(item *component.ListItem[Entry]) error {
			e := item.Value()
			return item.Add(
				component.NewLabel("name", component.Of(e.Name)),
				component.NewLabel("text", component.Of(e.Text)),
				component.NewLabel("at", component.Of(e.At.Format(time.DateTime))),
			)
		})

		if err := p.Add(component.NewFeedbackPanel("feedback"), form, entries); err != nil {
			return nil, err
		}
		return p, nil
	}
}

func newAbout(b *Book) loom.PageFactory {
	return func(_ component.Cycle, params *loom.PageParameters) (*component.Page, error) {
		p := component.NewPage("About", params, component.Extends("Layout"), component.Stateless())
		if err := layout(p); err != nil {
			return nil, err
		}
		if err := p.Add(component.NewLabel("count", component.ReadOnly(func() any { return b.Len() }))); err != nil {
			return nil, err
		}
		return p, nil
	}
}
