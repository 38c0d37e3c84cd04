package render

import (
	"html"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	telegramPolicyOnce sync.Once
	telegramPolicy     *bluemonday.Policy

	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// sanitizeTelegramHTML keeps only the entity tags Telegram's HTML parse mode
// understands and escapes everything else.
func sanitizeTelegramHTML(raw string) string {
	if raw == "" {
		return ""
	}
	return telegramSanitizer().Sanitize(raw)
}

// stripMarkup removes every tag and returns unescaped text.
func stripMarkup(raw string) string {
	if raw == "" {
		return ""
	}
	return html.UnescapeString(strictSanitizer().Sanitize(raw))
}

func telegramSanitizer() *bluemonday.Policy {
	telegramPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del",
			"code", "pre", "blockquote", "tg-spoiler")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowURLSchemes("http", "https", "tg")
		policy.RequireParseableURLs(true)
		telegramPolicy = policy
	})
	return telegramPolicy
}

func strictSanitizer() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}
