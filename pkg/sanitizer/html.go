package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	safePolicy *bluemonday.Policy
	safeOnce   sync.Once
)

// SafePolicy is the policy SanitizeHTML applies: paragraphs, line breaks,
// emphasis, lists, code, quotes and nofollow links.
func SafePolicy() *bluemonday.Policy {
	safeOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowStandardURLs()
		p.AllowElements(
			"p", "br",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		p.AllowAttrs("href").OnElements("a")
		p.RequireNoFollowOnLinks(true)
		safePolicy = p
	})
	return safePolicy
}

// SanitizeHTML keeps the formatting SafePolicy allows and drops scripts,
// event handlers and javascript: URLs.
func SanitizeHTML(s string) string {
	return SafePolicy().Sanitize(s)
}

// SanitizeWith applies policy, or SafePolicy when policy is nil.
func SanitizeWith(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return SanitizeHTML(s)
	}
	return policy.Sanitize(s)
}
