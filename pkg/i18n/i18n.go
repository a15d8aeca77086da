package i18n

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// DefaultLang is used when no default language is configured.
const DefaultLang = "en"

// M holds placeholder values for a message.
type M map[string]any

// I18n is an immutable message catalog keyed by language, namespace and a
// dotted key. It is safe for concurrent use.
type I18n struct {
	// "lang:namespace:key" -> message
	messages    map[string]string
	defaultLang string
	languages   []string
	onMissing   func(lang, namespace, key string)
}

// Option configures the catalog during construction.
type Option func(*I18n) error

// New builds a catalog from opts.
func New(opts ...Option) (*I18n, error) {
	i := &I18n{
		messages:    make(map[string]string),
		defaultLang: DefaultLang,
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, fmt.Errorf("i18n: apply option: %w", err)
		}
	}
	if len(i.languages) == 0 {
		i.languages = []string{i.defaultLang}
	}
	return i, nil
}

// WithDefaultLanguage sets the fallback language. Apply it before
// WithLanguages.
func WithDefaultLanguage(lang string) Option {
	return func(i *I18n) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		i.defaultLang = canonical(lang)
		return nil
	}
}

// WithLanguages lists the supported languages. The default language comes
// first, the rest are sorted.
func WithLanguages(langs ...string) Option {
	return func(i *I18n) error {
		set := make(map[string]struct{}, len(langs))
		for _, l := range langs {
			if l != "" {
				set[canonical(l)] = struct{}{}
			}
		}
		delete(set, i.defaultLang)
		i.languages = append([]string{i.defaultLang}, slices.Sorted(maps.Keys(set))...)
		return nil
	}
}

// WithTranslations adds messages for lang and namespace. Nested maps are
// flattened into dotted keys.
func WithTranslations(lang, namespace string, messages map[string]any) Option {
	return func(i *I18n) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		if namespace == "" {
			return ErrEmptyNamespace
		}
		i.add(lang, namespace, messages)
		return nil
	}
}

// WithMissingKeyHandler registers fn to be called by T and Tn when a key
// has no message in any fallback language.
func WithMissingKeyHandler(fn func(lang, namespace, key string)) Option {
	return func(i *I18n) error {
		i.onMissing = fn
		return nil
	}
}

// Languages returns the supported languages, default first.
func (i *I18n) Languages() []string { return i.languages }

// DefaultLanguage returns the fallback language.
func (i *I18n) DefaultLanguage() string { return i.defaultLang }

// Lookup returns the raw message for key. It walks the language's parent
// chain ("de-CH", "de") and then the default language.
func (i *I18n) Lookup(lang, namespace, key string) (string, bool) {
	for _, l := range i.chain(lang) {
		if msg, ok := i.messages[l+":"+namespace+":"+key]; ok {
			return msg, true
		}
	}
	return "", false
}

// T returns the message for key with {{name}} placeholders replaced. A
// missing key yields the key itself.
func (i *I18n) T(lang, namespace, key string, placeholders ...M) string {
	msg, ok := i.Lookup(lang, namespace, key)
	if !ok {
		i.missing(lang, namespace, key)
		return key
	}
	return Replace(msg, merge(nil, placeholders))
}

// Tn returns the plural form of key for n. Forms live under key.zero,
// key.one, key.two, key.few, key.many and key.other; the form is chosen by
// the CLDR cardinal rules of lang and falls back to key.other. A language
// is exhausted before its fallback is tried. {{count}} is set to n.
func (i *I18n) Tn(lang, namespace, key string, n int, placeholders ...M) string {
	vars := merge(M{"count": n}, placeholders)
	forms := pluralForms(lang, n)
	for _, l := range i.chain(lang) {
		for _, form := range forms {
			if msg, ok := i.messages[l+":"+namespace+":"+key+"."+form]; ok {
				return Replace(msg, vars)
			}
		}
	}
	i.missing(lang, namespace, key)
	return key
}

func (i *I18n) missing(lang, namespace, key string) {
	if i.onMissing != nil {
		i.onMissing(lang, namespace, key)
	}
}

func (i *I18n) add(lang, namespace string, messages map[string]any) {
	prefix := canonical(lang) + ":" + namespace + ":"
	for k, v := range flatten(messages, "") {
		i.messages[prefix+k] = v
	}
}

func (i *I18n) chain(lang string) []string {
	var out []string
	if tag, err := language.Parse(lang); err == nil {
		for t := tag; t != language.Und; t = t.Parent() {
			out = append(out, t.String())
		}
	} else if lang != "" {
		out = append(out, lang)
	}
	if !slices.Contains(out, i.defaultLang) {
		out = append(out, i.defaultLang)
	}
	return out
}

// canonical normalizes a language tag ("EN-us" -> "en-US"); unparsable
// input is returned unchanged.
func canonical(lang string) string {
	if tag, err := language.Parse(lang); err == nil {
		return tag.String()
	}
	return lang
}

var formNames = map[plural.Form]string{
	plural.Zero:  "zero",
	plural.One:   "one",
	plural.Two:   "two",
	plural.Few:   "few",
	plural.Many:  "many",
	plural.Other: "other",
}

// pluralForms lists the message forms to try for n, most specific first.
// An explicit zero form wins for 0 in every language.
func pluralForms(lang string, n int) []string {
	var forms []string
	if n == 0 {
		forms = append(forms, "zero")
	}
	abs := n
	if abs < 0 {
		abs = -abs
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	if f := formNames[plural.Cardinal.MatchPlural(tag, abs, 0, 0, 0, 0)]; f != "other" && f != "zero" {
		forms = append(forms, f)
	}
	return append(forms, "other")
}

// Replace substitutes {{name}} placeholders in s. Unknown placeholders are
// left as they are.
func Replace(s string, vars M) string {
	if len(vars) == 0 || !strings.Contains(s, "{{") {
		return s
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

func merge(dst M, src []M) M {
	if dst == nil {
		dst = M{}
	}
	for _, m := range src {
		maps.Copy(dst, m)
	}
	return dst
}

func flatten(data map[string]any, prefix string) map[string]string {
	out := make(map[string]string)
	for k, v := range data {
		if prefix != "" {
			k = prefix + "." + k
		}
		switch v := v.(type) {
		case string:
			out[k] = v
		case map[string]any:
			maps.Copy(out, flatten(v, k))
		case map[string]string:
			for sk, sv := range v {
				out[k+"."+sk] = sv
			}
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}
