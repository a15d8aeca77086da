// Package i18n holds the message catalog behind <wicket:message> tags and
// the Locale middleware.
//
// Messages are addressed by language, namespace and a dotted key. Lookups
// fall back along the language's parent chain ("de-CH" to "de") and then to
// the default language:
//
//	svc, err := i18n.New(
//		i18n.WithDefaultLanguage("en"),
//		i18n.WithLanguages("en", "de"),
//		i18n.WithYAMLDir(messagesFS), // en/app.yaml, de/app.yaml
//	)
//	svc.T("de", "app", "greeting", i18n.M{"name": "Ada"})
//	svc.Tn("pl", "app", "entries", 5) // entries.many
//
// Plural forms and number formatting follow CLDR through golang.org/x/text.
package i18n
