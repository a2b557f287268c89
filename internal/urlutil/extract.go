package urlutil

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// trailingPunctuation is trimmed from the end of every extracted URL,
// e.g. the full stop in "visit http://a.com."
const trailingPunctuation = ".,;!?)"

// ExtractAll returns every http(s) URL in text, left to right, with trailing
// punctuation removed. It returns an empty slice when nothing is found.
func ExtractAll(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))

	for _, m := range matches {
		cleaned := strings.TrimRight(m, trailingPunctuation)
		if cleaned == "" {
			continue
		}
		urls = append(urls, cleaned)
	}

	return urls
}

// ExtractFirst returns the first URL in text.
func ExtractFirst(text string) (string, bool) {
	urls := ExtractAll(text)
	if len(urls) == 0 {
		return "", false
	}
	return urls[0], true
}

// StripScheme removes a leading http:// or https://.
func StripScheme(raw string) string {
	lower := strings.ToLower(raw)
	for _, prefix := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, prefix) {
			return raw[len(prefix):]
		}
	}
	return raw
}
