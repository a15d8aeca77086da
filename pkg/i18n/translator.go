package i18n

import "golang.org/x/text/language"

// Translator binds a catalog to one language and namespace.
type Translator struct {
	*LocaleFormat
	i18n      *I18n
	language  string
	namespace string
}

// NewTranslator returns a Translator for lang, or for the default language
// when lang is empty. A nil format is derived from lang.
func NewTranslator(svc *I18n, lang, namespace string, format *LocaleFormat) *Translator {
	if lang == "" {
		lang = svc.DefaultLanguage()
	}
	if format == nil {
		format = NewLocaleFormat(language.Make(lang))
	}
	return &Translator{LocaleFormat: format, i18n: svc, language: lang, namespace: namespace}
}

// T translates key.
func (t *Translator) T(key string, placeholders ...M) string {
	return t.i18n.T(t.language, t.namespace, key, placeholders...)
}

// Tn translates the plural form of key for n.
func (t *Translator) Tn(key string, n int, placeholders ...M) string {
	return t.i18n.Tn(t.language, t.namespace, key, n, placeholders...)
}

// Language returns the bound language.
func (t *Translator) Language() string { return t.language }

// Namespace returns the bound namespace.
func (t *Translator) Namespace() string { return t.namespace }
