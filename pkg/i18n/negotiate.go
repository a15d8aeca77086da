package i18n

import "golang.org/x/text/language"

// maxAcceptLanguage caps the header length handed to the parser.
const maxAcceptLanguage = 4096

// ParseAcceptLanguage picks the entry of available that best matches an
// Accept-Language header. It returns available[0] when nothing matches and
// "" when available is empty.
func ParseAcceptLanguage(header string, available []string) string {
	if len(available) == 0 {
		return ""
	}
	if len(header) > maxAcceptLanguage {
		header = header[:maxAcceptLanguage]
	}
	desired, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(desired) == 0 {
		return available[0]
	}
	supported := make([]language.Tag, len(available))
	for n, l := range available {
		supported[n] = language.Make(l)
	}
	_, idx, conf := language.NewMatcher(supported).Match(desired...)
	if conf == language.No {
		return available[0]
	}
	return available[idx]
}
