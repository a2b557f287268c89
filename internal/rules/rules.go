package rules

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Locale codes with their own keyword lists.
const (
	LocaleEnglish = "en"
	LocaleTurkish = "tr"
	LocaleGerman  = "de"

	DefaultLocale = LocaleEnglish
)

// TextRule is a localized keyword rule. Patterns are stored lower-cased.
type TextRule struct {
	ID       string              `json:"id"`
	Severity int                 `json:"severity"`
	Tags     []string            `json:"tags"`
	Patterns map[string][]string `json:"patterns"`
}

// PatternsFor returns the rule's patterns for locale, falling back to the
// default locale. nil means the rule has nothing to match.
func (r TextRule) PatternsFor(locale string) []string {
	if p, ok := r.Patterns[locale]; ok && len(p) > 0 {
		return p
	}
	return r.Patterns[DefaultLocale]
}

func (r TextRule) clone() TextRule {
	r.Tags = slices.Clone(r.Tags)
	patterns := make(map[string][]string, len(r.Patterns))
	for locale, p := range r.Patterns {
		patterns[locale] = slices.Clone(p)
	}
	r.Patterns = patterns
	return r
}

// URLRule is a regex evaluated against the expanded URL.
type URLRule struct {
	ID       string   `json:"id"`
	Severity int      `json:"severity"`
	Tags     []string `json:"tags"`
	Regex    string   `json:"regex"`

	compiled *regexp.Regexp
}

// Match reports whether the rule's regex matches s.
func (r URLRule) Match(s string) bool {
	if r.compiled == nil {
		return false
	}
	return r.compiled.MatchString(s)
}

func (r URLRule) clone() URLRule {
	r.Tags = slices.Clone(r.Tags)
	return r
}

// ShortLink maps a short-link fragment to its expansion.
type ShortLink struct {
	Fragment string `json:"fragment"`
	Expanded string `json:"expanded"`
}

// Set is the complete, validated rule configuration. It is built once and
// never mutated, so it can be shared by any number of goroutines.
type Set struct {
	textRules  []TextRule
	urlRules   []URLRule
	reputation Reputation
	shortener  Shortener
	ages       AgeTable
	severities Severities

	locales        map[string]struct{}
	homographs     []string
	brands         []string
	sensitivePaths []string
	loginPattern   *regexp.Regexp
}

// TextRules returns a deep copy of the text rules.
func (s *Set) TextRules() []TextRule {
	out := make([]TextRule, len(s.textRules))
	for i, r := range s.textRules {
		out[i] = r.clone()
	}
	return out
}

// URLRules returns a copy of the URL rules. Compiled regexes are shared.
func (s *Set) URLRules() []URLRule {
	out := make([]URLRule, len(s.urlRules))
	for i, r := range s.urlRules {
		out[i] = r.clone()
	}
	return out
}

func (s *Set) Reputation() Reputation { return s.reputation }
func (s *Set) Shortener() Shortener { return s.shortener }
func (s *Set) Ages() AgeTable { return s.ages }
func (s *Set) Severities() Severities { return s.severities }
func (s *Set) Homographs() []string { return slices.Clone(s.homographs) }
func (s *Set) Brands() []string { return slices.Clone(s.brands) }
func (s *Set) SensitivePaths() []string { return slices.Clone(s.sensitivePaths) }

// Locales returns the locales that have their own keyword lists, sorted.
func (s *Set) Locales() []string {
	return slices.Sorted(maps.Keys(s.locales))
}

// ResolveLocale returns locale if it has keyword lists, DefaultLocale otherwise.
// Region suffixes are ignored, so "de-AT" resolves to "de".
func (s *Set) ResolveLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	if _, ok := s.locales[locale]; ok {
		return locale
	}
	return DefaultLocale
}

// MatchLoginKeyword reports whether the sensitive-keyword regex matches url.
func (s *Set) MatchLoginKeyword(url string) bool {
	if s.loginPattern == nil {
		return false
	}
	return s.loginPattern.MatchString(url)
}
