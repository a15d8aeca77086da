package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/loom/pkg/component"
	"github.com/dmitrymomot/loom/pkg/pagemap"
)

// RenderStrategy decides how a page answering a request reaches the browser.
type RenderStrategy int

const (
	// RedirectToBuffer renders the page, keeps the output and redirects to the
	// page URL, which then serves the kept output once.
	RedirectToBuffer RenderStrategy = iota
	// RedirectToRender redirects to the page URL and renders on that request.
	RedirectToRender
	// OnePass renders into the current response.
	OnePass
)

var renderStrategyNames = map[RenderStrategy]string{
	RedirectToBuffer: "redirect_to_buffer",
	RedirectToRender: "redirect_to_render",
	OnePass:          "one_pass",
}

func (s RenderStrategy) String() string {
	if n, ok := renderStrategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("RenderStrategy(%d)", int(s))
}

// UnmarshalYAML decodes the strategy from its name.
func (s *RenderStrategy) UnmarshalYAML(value *yaml.Node) error {
	for k, n := range renderStrategyNames {
		if strings.EqualFold(value.Value, n) {
			*s = k
			return nil
		}
	}
	return errors.Join(ErrInvalidSettings, fmt.Errorf("render_strategy %q", value.Value))
}

// ExceptionDisplay selects what users see when a request fails unexpectedly.
type ExceptionDisplay int

const (
	// ShowExceptionPage renders the error with its details. Development only.
	ShowExceptionPage ExceptionDisplay = iota
	// ShowInternalErrorPage renders the internal error page.
	ShowInternalErrorPage
	// ShowNoExceptionPage answers with a bare 500 status.
	ShowNoExceptionPage
)

var exceptionDisplayNames = map[ExceptionDisplay]string{
	ShowExceptionPage:     "exception_page",
	ShowInternalErrorPage: "internal_error_page",
	ShowNoExceptionPage:   "none",
}

func (d ExceptionDisplay) String() string {
	if n, ok := exceptionDisplayNames[d]; ok {
		return n
	}
	return fmt.Sprintf("ExceptionDisplay(%d)", int(d))
}

// UnmarshalYAML decodes the display mode from its name.
func (d *ExceptionDisplay) UnmarshalYAML(value *yaml.Node) error {
	for k, n := range exceptionDisplayNames {
		if strings.EqualFold(value.Value, n) {
			*d = k
			return nil
		}
	}
	return errors.Join(ErrInvalidSettings, fmt.Errorf("exception_display %q", value.Value))
}

// HeaderOrder is the YAML face of component.HeaderStrategy.
type HeaderOrder component.HeaderStrategy

// UnmarshalYAML accepts "child_first" and "parent_first".
func (h *HeaderOrder) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(value.Value) {
	case "child_first":
		*h = HeaderOrder(component.ChildFirst)
	case "parent_first":
		*h = HeaderOrder(component.ParentFirst)
	default:
		return errors.Join(ErrInvalidSettings, fmt.Errorf("header_strategy %q", value.Value))
	}
	return nil
}

// Settings tune the request cycle. Zero values are replaced by defaults.
type Settings struct {
	RenderStrategy              RenderStrategy   `yaml:"render_strategy"`
	ExceptionDisplay            ExceptionDisplay `yaml:"exception_display"`
	HeaderStrategy              HeaderOrder      `yaml:"header_strategy"`
	StripWicketTags             bool             `yaml:"strip_wicket_tags"`
	AutomaticMultiWindowSupport bool             `yaml:"automatic_multi_window_support"`
	MaxPagesPerMap              int              `yaml:"max_pages_per_map"`
	MaxRestarts                 int              `yaml:"max_restarts"`
	PageExpiredStatus           int              `yaml:"page_expired_status"`
	BufferTTL                   time.Duration    `yaml:"buffer_ttl"`
	PageStateTTL                time.Duration    `yaml:"page_state_ttl"`
	MarkupCacheTTL              time.Duration    `yaml:"markup_cache_ttl"`
	DefaultLocale               string           `yaml:"default_locale"`
	Style                       string           `yaml:"style"`
}

// Defaults.
const (
	DefaultMaxRestarts  = 20
	DefaultBufferTTL    = time.Minute
	DefaultPageStateTTL = 30 * time.Minute
)

// DefaultSettings returns the settings used when none are given: buffered
// redirects, the exception page and wicket tags kept in the output.
func DefaultSettings() Settings {
	return Settings{}.withDefaults()
}

func (s Settings) withDefaults() Settings {
	if s.MaxPagesPerMap <= 0 {
		s.MaxPagesPerMap = pagemap.DefaultMaxPages
	}
	if s.MaxRestarts <= 0 {
		s.MaxRestarts = DefaultMaxRestarts
	}
	if s.PageExpiredStatus == 0 {
		s.PageExpiredStatus = 200
	}
	if s.BufferTTL <= 0 {
		s.BufferTTL = DefaultBufferTTL
	}
	if s.PageStateTTL <= 0 {
		s.PageStateTTL = DefaultPageStateTTL
	}
	if s.DefaultLocale == "" {
		s.DefaultLocale = "en"
	}
	return s
}

// ParseSettings decodes YAML settings on top of the defaults.
func ParseSettings(data []byte) (Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		if errors.Is(err, ErrInvalidSettings) {
			return Settings{}, err
		}
		return Settings{}, errors.Join(ErrInvalidSettings, err)
	}
	if s.PageExpiredStatus != 0 && (s.PageExpiredStatus < 200 || s.PageExpiredStatus > 599) {
		return Settings{}, errors.Join(ErrInvalidSettings, fmt.Errorf("page_expired_status %d", s.PageExpiredStatus))
	}
	return s.withDefaults(), nil
}

// LoadSettings reads and parses the settings file name from fsys.
func LoadSettings(fsys fs.FS, name string) (Settings, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return ParseSettings(data)
}
