package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	apperrors "github.com/askwhyharsh/scamcheck/pkg/errors"
	"github.com/askwhyharsh/scamcheck/pkg/logger"
)

//go:embed default_rules.json
var defaultRules []byte

const defaultLoginPattern = `(login|verify|security|account|secure|update|bank)`

// document is the on-disk shape of a rule file.
type document struct {
	Locales        []string       `json:"locales"`
	TextRules      []TextRule     `json:"text_rules"`
	URLRules       []URLRule      `json:"url_rules"`
	Allowlist      []string       `json:"allowlist"`
	Blocklist      []string       `json:"blocklist"`
	Shorteners     []ShortLink    `json:"shorteners"`
	DomainAges     map[string]int `json:"domain_ages"`
	Homographs     []string       `json:"homographs"`
	Brands         []string       `json:"brands"`
	SensitivePaths []string       `json:"sensitive_path_keywords"`
	LoginPattern   string         `json:"login_pattern"`
	Severities     *Severities    `json:"severities"`
}

// Default builds the Set shipped with the binary.
func Default(log logger.Logger) (*Set, error) {
	return Load(defaultRules, log)
}

// LoadFile builds a Set from a JSON rule file.
func LoadFile(path string, log logger.Logger) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Load(data, log)
}

// Load parses and validates a rule document. A document that is not valid
// JSON is an error; individual malformed rules are logged and skipped.
func Load(data []byte, log logger.Logger) (*Set, error) {
	if log == nil {
		log = logger.NewNop()
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidRuleDocument, err)
	}

	set := &Set{
		textRules:      loadTextRules(doc.TextRules, log),
		urlRules:       loadURLRules(doc.URLRules, log),
		reputation:     NewReputation(doc.Allowlist, doc.Blocklist),
		shortener:      NewShortener(doc.Shorteners),
		ages:           NewAgeTable(doc.DomainAges),
		severities:     DefaultSeverities,
		locales:        loadLocales(doc.Locales),
		homographs:     trimAll(doc.Homographs, false),
		brands:         trimAll(doc.Brands, true),
		sensitivePaths: trimAll(doc.SensitivePaths, true),
		loginPattern:   compileLoginPattern(doc.LoginPattern, log),
	}

	if doc.Severities != nil {
		set.severities = DefaultSeverities.merge(*doc.Severities)
	}

	log.Debug("Rule set loaded",
		"text_rules", len(set.textRules),
		"url_rules", len(set.urlRules),
		"shorteners", set.shortener.Len(),
	)

	return set, nil
}

func loadTextRules(raw []TextRule, log logger.Logger) []TextRule {
	out := make([]TextRule, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for i, r := range raw {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			log.Warn("Skipping text rule without id", "index", i)
			continue
		}
		if _, dup := seen[id]; dup {
			log.Warn("Skipping duplicate text rule", "rule", id)
			continue
		}
		if r.Severity < 0 {
			log.Warn("Skipping text rule with negative severity", "rule", id, "severity", r.Severity)
			continue
		}

		patterns := make(map[string][]string, len(r.Patterns))
		for locale, list := range r.Patterns {
			cleaned := trimAll(list, true)
			if len(cleaned) > 0 {
				patterns[strings.ToLower(locale)] = cleaned
			}
		}
		if len(patterns) == 0 {
			log.Warn("Skipping text rule without patterns", "rule", id)
			continue
		}

		seen[id] = struct{}{}
		out = append(out, TextRule{
			ID:       id,
			Severity: r.Severity,
			Tags:     trimAll(r.Tags, true),
			Patterns: patterns,
		})
	}
	return out
}

func loadURLRules(raw []URLRule, log logger.Logger) []URLRule {
	out := make([]URLRule, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for i, r := range raw {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			log.Warn("Skipping url rule without id", "index", i)
			continue
		}
		if _, dup := seen[id]; dup {
			log.Warn("Skipping duplicate url rule", "rule", id)
			continue
		}
		if r.Severity < 0 {
			log.Warn("Skipping url rule with negative severity", "rule", id, "severity", r.Severity)
			continue
		}

		re, err := regexp.Compile("(?i)" + r.Regex)
		if err != nil || r.Regex == "" {
			log.Warn("Invalid regex for url rule", "rule", id, "error", err)
			continue
		}

		seen[id] = struct{}{}
		out = append(out, URLRule{
			ID:       id,
			Severity: r.Severity,
			Tags:     trimAll(r.Tags, true),
			Regex:    r.Regex,
			compiled: re,
		})
	}
	return out
}

func compileLoginPattern(pattern string, log logger.Logger) *regexp.Regexp {
	if strings.TrimSpace(pattern) == "" {
		pattern = defaultLoginPattern
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		log.Warn("Invalid login keyword pattern, using default", "error", err)
		return regexp.MustCompile("(?i)" + defaultLoginPattern)
	}
	return re
}

func loadLocales(list []string) map[string]struct{} {
	locales := map[string]struct{}{DefaultLocale: {}}
	if len(list) == 0 {
		list = []string{LocaleEnglish, LocaleTurkish, LocaleGerman}
	}
	for _, l := range trimAll(list, true) {
		locales[l] = struct{}{}
	}
	return locales
}

func trimAll(in []string, lower bool) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if lower {
			s = strings.ToLower(s)
		}
		out = append(out, s)
	}
	return out
}
