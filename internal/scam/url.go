package scam

import (
	"strings"

	"github.com/askwhyharsh/scamcheck/internal/rules"
	"github.com/askwhyharsh/scamcheck/internal/urlutil"
)

const (
	newDomainDays   = 30
	youngDomainDays = 180
)

// AnalyzeURL scores a URL. messageText is optional and only feeds the
// brand mismatch check. Every step after shortener expansion looks at the
// expanded URL, which is reported back as AnalyzedURL.
func (d *Detector) AnalyzeURL(rawURL, messageText string) Result {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return emptyResult()
	}

	sev := d.rules.Severities()
	b := newBuilder()

	expanded, changed := d.rules.Shortener().Expand(rawURL)
	if changed && expanded != rawURL {
		b.tag(TagURLShortener)
		b.reason(ReasonShortener)
		b.add(sev.Shortener)
	}
	b.analyzedURL = expanded

	domain, ok := urlutil.Domain(expanded)
	if !ok {
		return Result{
			Reasons:     []string{ReasonInvalidURL},
			Tags:        []string{},
			AnalyzedURL: expanded,
		}
	}

	rep := d.rules.Reputation()
	if rep.Allowed(domain) {
		return Result{
			Score:       clamp(sev.TrustedDomain),
			Reasons:     []string{ReasonTrustedDomain},
			Tags:        []string{TagTrustedDomain},
			AnalyzedURL: expanded,
		}
	}

	if rep.Blocked(domain) {
		b.add(sev.Blocklist)
		b.reason(ReasonBlocklist)
		b.tag(TagMaliciousDomain)
	}

	d.scoreDomainAge(b, domain, sev)
	d.scoreHomograph(b, expanded, domain, sev)
	d.scoreIPHost(b, expanded, domain, sev)

	if d.rules.MatchLoginKeyword(expanded) {
		b.add(sev.LoginKeyword)
		b.reason(ReasonLoginKeyword)
		b.tag(TagSensitivePath)
	}

	for _, rule := range d.urlRules {
		if b.has(rule.ID) {
			continue
		}
		if d.urlRuleFires(rule, expanded) {
			b.add(rule.Severity)
			b.reason(rule.ID)
			b.tag(rule.Tags...)
		}
	}

	if strings.TrimSpace(messageText) != "" {
		d.scoreMismatch(b, messageText, domain, sev)
	}

	if strings.Contains(expanded, "@") {
		b.add(sev.AtSymbol)
		b.reason(ReasonAtSymbol)
		b.tag(TagCredentialHarvesting)
	}

	return b.result()
}

// scoreDomainAge adds a reason for brand new domains. Domains younger than
// six months add points without a reason.
func (d *Detector) scoreDomainAge(b *builder, domain string, sev rules.Severities) {
	age, known := d.rules.Ages().Resolve(domain, d.opts.AgePolicy)
	if !known {
		return
	}

	switch {
	case age < newDomainDays:
		b.add(sev.NewDomain)
		b.reason(ReasonNewDomain)
		b.tag(TagNewlyRegistered)
	case age < youngDomainDays:
		b.add(sev.YoungDomain)
	}
}

func (d *Detector) scoreHomograph(b *builder, expanded, domain string, sev rules.Severities) {
	if urlutil.IsPunycode(domain) {
		b.add(sev.Punycode)
		b.reason(ReasonPunycode)
		b.tag(TagHomographRisk)
	}

	// The raw host keeps its case so entries like "paypaI" can match.
	rawHost := urlutil.Hostname(expanded)
	for _, h := range d.homographs {
		if strings.Contains(rawHost, h) || strings.Contains(domain, h) {
			b.add(sev.Homograph)
			b.reason(ReasonHomograph)
			b.tag(TagHomographRisk)
			return
		}
	}
}

func (d *Detector) scoreIPHost(b *builder, expanded, domain string, sev rules.Severities) {
	if !urlutil.IsIPAddress(domain) {
		return
	}

	b.add(sev.IPAddress)
	b.reason(ReasonIPAddress)

	if port := urlutil.Port(expanded); port != "" && port != "80" && port != "443" {
		b.add(sev.SuspiciousPort)
		b.reason(ReasonSuspiciousPort)
	}

	path := strings.ToLower(urlutil.Path(expanded))
	for _, kw := range d.sensitivePaths {
		if strings.Contains(path, kw) {
			b.add(sev.IPSensitive)
			b.tag(TagSensitivePath, TagPhishingIP)
			return
		}
	}
}

// scoreMismatch flags a message that names "<brand>.com" while the link
// points somewhere without the brand in its domain. Only the first brand
// found counts.
func (d *Detector) scoreMismatch(b *builder, messageText, domain string, sev rules.Severities) {
	text := strings.ToLower(messageText)

	for _, brand := range d.brands {
		if strings.Contains(text, brand+".com") && !strings.Contains(domain, brand) {
			b.add(sev.Mismatch)
			b.reason(ReasonMismatch)
			b.tag(TagImpersonation)
			return
		}
	}
}

// urlRuleFires evaluates one regex rule. A panic counts as no match.
func (d *Detector) urlRuleFires(rule rules.URLRule, url string) (fired bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("URL rule evaluation failed", "rule", rule.ID, "panic", r)
			fired = false
		}
	}()

	return rule.Match(url)
}
