package scam

import (
	"strings"
	"unicode/utf8"

	"github.com/askwhyharsh/scamcheck/internal/rules"
)

// AnalyzeText scores free text against the keyword rules for locale.
// Unsupported locales use the default locale's keywords.
func (d *Detector) AnalyzeText(text, locale string) Result {
	if strings.TrimSpace(text) == "" {
		return emptyResult()
	}

	b := newBuilder()

	if utf8.RuneCountInString(text) > d.opts.MaxTextLength {
		text = truncateRunes(text, d.opts.MaxTextLength)
		b.reason(ReasonInputTooLong)
		b.tag(TagTruncated)
	}

	normalized := strings.ToLower(text)
	active := d.rules.ResolveLocale(locale)

	matched := 0
	for _, rule := range d.textRules {
		if matched >= d.opts.MaxRuleMatches {
			d.logger.Warn("Text rule limit reached", "matched", matched)
			break
		}

		if !d.textRuleFires(rule, active, normalized) {
			continue
		}

		b.reason(rule.ID)
		b.tag(rule.Tags...)
		b.add(rule.Severity)
		matched++
	}

	return b.result()
}

// textRuleFires reports whether any of the rule's patterns is contained in
// text. A panic while matching counts as no match.
func (d *Detector) textRuleFires(rule rules.TextRule, locale, text string) (fired bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("Text rule evaluation failed", "rule", rule.ID, "panic", r)
			fired = false
		}
	}()

	for _, pattern := range rule.PatternsFor(locale) {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
