package pkg

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy  *bluemonday.Policy
	plainPolicy *bluemonday.Policy
	policyOnce  sync.Once
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		richPolicy = bluemonday.UGCPolicy()
		richPolicy.AllowElements("u", "s", "sub", "sup", "mark")
		plainPolicy = bluemonday.StrictPolicy()
	})
	return richPolicy, plainPolicy
}

// SanitizeHTML strips scripts, event handlers and other unsafe markup from
// user-written rich text while keeping basic formatting, links and images.
func SanitizeHTML(s string) string {
	if s == "" {
		return ""
	}
	rich, _ := policies()
	return strings.TrimSpace(rich.Sanitize(s))
}

// StripHTML removes every tag and returns unescaped plain text, for fields
// the client renders as text.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	_, plain := policies()
	return strings.TrimSpace(html.UnescapeString(plain.Sanitize(s)))
}
