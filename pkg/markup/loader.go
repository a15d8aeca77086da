package markup

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/dmitrymomot/loom/pkg/cache"
)

// Loader resolves markup for a component class and caches the parsed result.
//
// For class "pages/Home", style "dark" and locale "de-CH" the candidates are
// tried in this order:
//
//	pages/Home_dark_de_CH.html, pages/Home_dark_de.html, pages/Home_dark.html,
//	pages/Home_de_CH.html, pages/Home_de.html, pages/Home.html
type Loader struct {
	fsys     fs.FS
	cache    cache.Cache[*Markup]
	inline   map[string]string
	ext      string
	cacheTTL time.Duration
	mu       sync.RWMutex
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithExtension sets the markup file extension. Default: ".html".
func WithExtension(ext string) LoaderOption {
	return func(l *Loader) {
		if ext != "" {
			l.ext = ext
		}
	}
}

// WithCache sets the cache for parsed markup. Default: an unbounded in-memory cache.
func WithCache(c cache.Cache[*Markup]) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.cache = c
		}
	}
}

// WithCacheTTL sets how long parsed markup is cached. Negative means forever,
// which is the default. A short TTL picks up template edits during development.
func WithCacheTTL(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.cacheTTL = d
	}
}

// NewLoader creates a loader reading markup from fsys. fsys may be nil when all
// markup is registered inline.
func NewLoader(fsys fs.FS, opts ...LoaderOption) *Loader {
	l := &Loader{
		fsys:     fsys,
		inline:   make(map[string]string),
		ext:      ".html",
		cacheTTL: -1,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.cache == nil {
		l.cache = cache.NewMemory[*Markup](cache.WithCleanupInterval(0))
	}
	return l
}

// Register sets inline markup for a class. It takes precedence over files and
// ignores style and locale.
func (l *Loader) Register(class, markup string) {
	l.mu.Lock()
	l.inline[class] = markup
	l.mu.Unlock()
	_ = l.cache.Clear(context.Background())
}

// Load returns the markup of class for the given style and locale.
func (l *Loader) Load(ctx context.Context, class, style string, locale language.Tag) (*Markup, error) {
	key := strings.Join([]string{class, style, locale.String()}, "|")
	return cache.GetOrSet(ctx, l.cache, key, func(ctx context.Context) (*Markup, time.Duration, error) {
		m, err := l.load(class, style, locale)
		return m, l.cacheTTL, err
	})
}

// LoadInherited loads markup for a class chain ordered from the most derived class
// to the root, applying markup inheritance where derived markup uses <wicket:extend>.
// Classes in the chain without markup of their own are skipped.
func (l *Loader) LoadInherited(ctx context.Context, chain []string, style string, locale language.Tag) (*Markup, error) {
	if len(chain) == 1 {
		return l.Load(ctx, chain[0], style, locale)
	}
	key := strings.Join([]string{strings.Join(chain, ">"), style, locale.String()}, "|")
	return cache.GetOrSet(ctx, l.cache, key, func(ctx context.Context) (*Markup, time.Duration, error) {
		var result *Markup
		for i := len(chain) - 1; i >= 0; i-- {
			m, err := l.Load(ctx, chain[i], style, locale)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, 0, err
			}
			if result == nil {
				result = m
				continue
			}
			if _, ok := m.FindWicketTag("extend", ""); !ok {
				result = m
				continue
			}
			if result, err = Merge(result, m); err != nil {
				return nil, 0, err
			}
		}
		if result == nil {
			return nil, 0, errors.Join(ErrNotFound, errors.New(chain[0]))
		}
		return result, l.cacheTTL, nil
	})
}

func (l *Loader) load(class, style string, locale language.Tag) (*Markup, error) {
	l.mu.RLock()
	src, ok := l.inline[class]
	l.mu.RUnlock()
	if ok {
		return ParseString(src, class)
	}

	if l.fsys == nil {
		return nil, errors.Join(ErrNotFound, errors.New(class))
	}

	for _, name := range Candidates(class, style, locale, l.ext) {
		data, err := fs.ReadFile(l.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return ParseString(string(data), name)
	}
	return nil, errors.Join(ErrNotFound, errors.New(class))
}

// Candidates lists resource names to try for a class, most specific first.
func Candidates(class, style string, locale language.Tag, ext string) []string {
	var locales []string
	for t := locale; t != language.Und; t = t.Parent() {
		locales = append(locales, strings.ReplaceAll(t.String(), "-", "_"))
	}
	locales = append(locales, "")

	styles := []string{""}
	if style != "" {
		styles = []string{style, ""}
	}

	class = path.Clean(class)
	var out []string
	for _, s := range styles {
		for _, loc := range locales {
			name := class
			if s != "" {
				name += "_" + s
			}
			if loc != "" {
				name += "_" + loc
			}
			out = append(out, name+ext)
		}
	}
	return out
}
