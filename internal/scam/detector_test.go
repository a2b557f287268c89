package scam

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askwhyharsh/scamcheck/internal/rules"
	"github.com/askwhyharsh/scamcheck/internal/urlutil"
	"github.com/askwhyharsh/scamcheck/pkg/logger"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	set, err := rules.Default(logger.NewNop())
	require.NoError(t, err)
	return NewDetector(set, DefaultOptions(), logger.NewNop())
}

func TestAnalyzeTextEmpty(t *testing.T) {
	d := newTestDetector(t)

	for _, in := range []string{"", "   ", "\n\t"} {
		got := d.AnalyzeText(in, "en")
		assert.Equal(t, 0, got.Score)
		assert.Empty(t, got.Reasons)
		assert.Empty(t, got.Tags)
		assert.NotNil(t, got.Reasons)
		assert.NotNil(t, got.Tags)
		assert.Empty(t, got.AnalyzedURL)
	}
}

func TestAnalyzeTextDemoMessages(t *testing.T) {
	d := newTestDetector(t)

	for _, locale := range []string{"en", "tr", "de"} {
		t.Run(locale, func(t *testing.T) {
			_, msg := d.DemoMessage(locale)
			got := d.AnalyzeText(msg, locale)

			assert.Equal(t, 70, got.Score)
			assert.Equal(t, []string{"urgency", "account_suspended", "credential_request"}, got.Reasons)
			assert.ElementsMatch(t, []string{"urgency", "bank", "account", "phishing", "credential_harvesting"}, got.Tags)
		})
	}
}

func TestAnalyzeTextCountsRuleOnce(t *testing.T) {
	d := newTestDetector(t)

	got := d.AnalyzeText("URGENT urgent act now, immediately!", "en")
	assert.Equal(t, 15, got.Score)
	assert.Equal(t, []string{"urgency"}, got.Reasons)
}

func TestAnalyzeTextLocaleFallback(t *testing.T) {
	d := newTestDetector(t)
	text := "Congratulations! You have won. Share the code we sent to claim your prize."

	assert.Equal(t, d.AnalyzeText(text, "en"), d.AnalyzeText(text, "fr"))
	assert.Equal(t, d.AnalyzeText(text, "en"), d.AnalyzeText(text, ""))
}

func TestAnalyzeTextRuleWithoutLocalePatterns(t *testing.T) {
	d := newTestDetector(t)

	got := d.AnalyzeText("Please pay with gift card today", "tr")
	assert.Equal(t, 30, got.Score)
	assert.Equal(t, []string{"gift_card_payment"}, got.Reasons)
	assert.ElementsMatch(t, []string{"gift_card", "financial"}, got.Tags)
}

func TestAnalyzeTextTruncates(t *testing.T) {
	d := newTestDetector(t)

	text := strings.Repeat("a", DefaultMaxTextLength) + " urgent"
	got := d.AnalyzeText(text, "en")

	assert.Equal(t, 0, got.Score)
	assert.Equal(t, []string{ReasonInputTooLong}, got.Reasons)
	assert.Equal(t, []string{TagTruncated}, got.Tags)

	got = d.AnalyzeText("urgent "+strings.Repeat("ü", DefaultMaxTextLength), "en")
	assert.Equal(t, 15, got.Score)
	assert.Equal(t, []string{ReasonInputTooLong, "urgency"}, got.Reasons)
}

func TestAnalyzeTextCircuitBreaker(t *testing.T) {
	var entries []string
	for i := 0; i < 30; i++ {
		entries = append(entries, fmt.Sprintf(`{"id": "r%02d", "severity": 1, "patterns": {"en": ["x"]}}`, i))
	}
	set, err := rules.Load([]byte(`{"text_rules": [`+strings.Join(entries, ",")+`]}`), logger.NewNop())
	require.NoError(t, err)

	d := NewDetector(set, Options{}, nil)
	got := d.AnalyzeText("x", "en")

	assert.Equal(t, 25, got.Score)
	assert.Len(t, got.Reasons, DefaultMaxRuleMatches)
	assert.Equal(t, "r24", got.Reasons[len(got.Reasons)-1])
}

func TestAnalyzeTextScoreClamped(t *testing.T) {
	d := newTestDetector(t)

	text := "URGENT: your account has been suspended. Verify your account, share the code, " +
		"congratulations you have won bitcoin, your package customs fee, virus detected, tax refund, pay with gift card, wire transfer"
	got := d.AnalyzeText(text, "en")

	assert.Equal(t, 100, got.Score)
	assert.Len(t, got.Reasons, 11)
}

func TestAnalyzeURLEmpty(t *testing.T) {
	d := newTestDetector(t)

	got := d.AnalyzeURL("", "")
	assert.True(t, got.Empty())
	assert.Empty(t, got.AnalyzedURL)

	got = d.AnalyzeURL("   ", "text")
	assert.True(t, got.Empty())
}

func TestAnalyzeURL(t *testing.T) {
	d := newTestDetector(t)

	tests := []struct {
		name     string
		url      string
		text     string
		score    int
		reasons  []string
		tags     []string
		analyzed string
	}{
		{
			name:     "allowlisted",
			url:      "https://google.com",
			score:    5,
			reasons:  []string{ReasonTrustedDomain},
			tags:     []string{TagTrustedDomain},
			analyzed: "https://google.com",
		},
		{
			name:     "allowlisted subdomain short-circuits other rules",
			url:      "https://accounts.google.com/login?verify=1@x",
			score:    5,
			reasons:  []string{ReasonTrustedDomain},
			tags:     []string{TagTrustedDomain},
			analyzed: "https://accounts.google.com/login?verify=1@x",
		},
		{
			name:     "blocklisted new domain",
			url:      "https://free-gift-claim.com",
			score:    100,
			reasons:  []string{ReasonBlocklist, ReasonNewDomain, "prize_bait"},
			tags:     []string{TagMaliciousDomain, TagNewlyRegistered, "prize"},
			analyzed: "https://free-gift-claim.com",
		},
		{
			name:     "punycode",
			url:      "https://xn--pple-43d.com",
			score:    60,
			reasons:  []string{ReasonPunycode},
			tags:     []string{TagHomographRisk},
			analyzed: "https://xn--pple-43d.com",
		},
		{
			name:     "homograph substring",
			url:      "https://www.paypaI.com/",
			score:    60,
			reasons:  []string{ReasonHomograph},
			tags:     []string{TagHomographRisk},
			analyzed: "https://www.paypaI.com/",
		},
		{
			name:     "ip host with port and login path",
			url:      "http://203.0.113.5:8080/login",
			score:    85,
			reasons:  []string{ReasonIPAddress, ReasonSuspiciousPort, ReasonLoginKeyword},
			tags:     []string{TagSensitivePath, TagPhishingIP},
			analyzed: "http://203.0.113.5:8080/login",
		},
		{
			name:     "ip host on default port",
			url:      "http://203.0.113.5:80/",
			score:    30,
			reasons:  []string{ReasonIPAddress},
			tags:     []string{},
			analyzed: "http://203.0.113.5:80/",
		},
		{
			name:     "young domain adds silent points",
			url:      "http://really-bad-site.net/login",
			score:    30,
			reasons:  []string{ReasonLoginKeyword},
			tags:     []string{TagSensitivePath},
			analyzed: "http://really-bad-site.net/login",
		},
		{
			name:     "brand mismatch",
			url:      "http://account-help.net",
			text:     "Your PayPal.com account is locked",
			score:    55,
			reasons:  []string{ReasonLoginKeyword, ReasonMismatch},
			tags:     []string{TagSensitivePath, TagImpersonation},
			analyzed: "http://account-help.net",
		},
		{
			name:     "brand named and matching domain",
			url:      "http://paypal-help.net",
			text:     "Log in at paypal.com",
			score:    25,
			reasons:  []string{"brand_hyphenated"},
			tags:     []string{TagImpersonation},
			analyzed: "http://paypal-help.net",
		},
		{
			name:     "at symbol",
			url:      "http://example.org@evil.test/",
			score:    30,
			reasons:  []string{ReasonAtSymbol},
			tags:     []string{TagCredentialHarvesting},
			analyzed: "http://example.org@evil.test/",
		},
		{
			name:     "unparseable",
			url:      "http://%zz",
			score:    0,
			reasons:  []string{ReasonInvalidURL},
			tags:     []string{},
			analyzed: "http://%zz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.AnalyzeURL(tt.url, tt.text)

			assert.Equal(t, tt.score, got.Score)
			assert.Equal(t, tt.reasons, got.Reasons)
			assert.ElementsMatch(t, tt.tags, got.Tags)
			assert.Equal(t, tt.analyzed, got.AnalyzedURL)
		})
	}
}

func TestAnalyzeURLShortenerExpansion(t *testing.T) {
	d := newTestDetector(t)

	got := d.AnalyzeURL("http://bit.ly/scam1", "")
	assert.Equal(t, "http://secure-banking-alert.com/login", got.AnalyzedURL)
	assert.Equal(t, 100, got.Score)
	assert.Equal(t, []string{ReasonShortener, ReasonBlocklist, ReasonNewDomain, ReasonLoginKeyword}, got.Reasons)
	assert.Contains(t, got.Tags, TagURLShortener)

	got = d.AnalyzeURL("https://bit.ly/safe", "")
	assert.Equal(t, "https://github.com", got.AnalyzedURL)
	assert.Equal(t, 5, got.Score)
	assert.Equal(t, []string{ReasonTrustedDomain}, got.Reasons)
}

func TestAnalyzeURLSubdomainOfBlocked(t *testing.T) {
	d := newTestDetector(t)

	got := d.AnalyzeURL("https://login.secure-bank-de.xyz", "")
	assert.Equal(t, 100, got.Score)
	assert.Contains(t, got.Reasons, ReasonBlocklist)
	assert.Contains(t, got.Reasons, ReasonNewDomain)
	assert.Contains(t, got.Reasons, "suspicious_tld")
}

func TestAnalyzeURLSimulatedAgePolicy(t *testing.T) {
	set, err := rules.Default(logger.NewNop())
	require.NoError(t, err)

	d := NewDetector(set, Options{AgePolicy: rules.AgePolicySimulated}, logger.NewNop())
	plain := newTestDetector(t)

	for _, u := range []string{"https://never-seen-before.test", "https://another-unknown.test/path"} {
		first := d.AnalyzeURL(u, "")
		assert.Equal(t, first, d.AnalyzeURL(u, ""))

		host, ok := urlutil.Domain(u)
		require.True(t, ok)

		age := rules.SimulatedAge(host)
		switch {
		case age < 30:
			assert.Contains(t, first.Reasons, ReasonNewDomain)
		case age < 180:
			assert.Equal(t, plain.AnalyzeURL(u, "").Score+rules.DefaultSeverities.YoungDomain, first.Score)
		default:
			assert.Equal(t, plain.AnalyzeURL(u, ""), first)
		}
	}
}

func TestCombine(t *testing.T) {
	text := Result{Score: 40, Reasons: []string{"urgency", "prize"}, Tags: []string{"urgency", "prize"}}
	url := Result{Score: 90, Reasons: []string{"prize", ReasonBlocklist}, Tags: []string{TagMaliciousDomain, "prize"}, AnalyzedURL: "http://x.test"}

	got := Combine(text, url)
	assert.Equal(t, 90, got.Score)
	assert.Equal(t, []string{"urgency", "prize", ReasonBlocklist}, got.Reasons)
	assert.Equal(t, []string{"urgency", "prize", TagMaliciousDomain}, got.Tags)
	assert.Equal(t, "http://x.test", got.AnalyzedURL)

	got = Combine(url, text)
	assert.Equal(t, 90, got.Score)
	assert.Empty(t, got.AnalyzedURL)

	got = Combine(emptyResult(), emptyResult())
	assert.True(t, got.Empty())
}

func TestAnalyzeAutoDetectsURL(t *testing.T) {
	d := newTestDetector(t)

	_, msg := d.DemoMessage("en")
	got := d.Analyze(Input{Text: msg, Locale: "en", AutoDetect: true})

	assert.Equal(t, 100, got.Score)
	assert.Equal(t, SeverityHigh, got.Severity)
	assert.Equal(t, ReplyBank, got.ReplyCategory)
	assert.Equal(t, "secure-banking-alert.com", got.Domain)
	assert.Equal(t, []string{"http://secure-banking-alert.com"}, got.DetectedURLs)
	assert.Equal(t, "http://secure-banking-alert.com", got.AnalyzedURL)
	assert.Equal(t, []string{
		"urgency", "account_suspended", "credential_request",
		ReasonBlocklist, ReasonNewDomain, ReasonLoginKeyword,
	}, got.Reasons)
}

func TestAnalyzeWithoutAutoDetect(t *testing.T) {
	d := newTestDetector(t)

	_, msg := d.DemoMessage("en")
	got := d.Analyze(Input{Text: msg, Locale: "en"})

	assert.Equal(t, 70, got.Score)
	assert.Empty(t, got.AnalyzedURL)
	assert.Empty(t, got.Domain)
	assert.Equal(t, []string{"http://secure-banking-alert.com"}, got.DetectedURLs)
}

func TestAnalyzeExplicitURLWins(t *testing.T) {
	d := newTestDetector(t)

	got := d.Analyze(Input{Text: "see http://free-gift-claim.com", URL: "https://google.com", AutoDetect: true})
	assert.Equal(t, 5, got.Score)
	assert.Equal(t, "google.com", got.Domain)
	assert.Equal(t, SeverityLow, got.Severity)
}

func TestAnalyzeIdempotentAndConcurrent(t *testing.T) {
	d := newTestDetector(t)
	in := Input{Text: "Dringend! Ihr Paket: http://t.co/promo", Locale: "de", AutoDetect: true}
	want := d.Analyze(in)

	var wg sync.WaitGroup
	results := make([]Analysis, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = d.Analyze(in)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestScoreAlwaysInRange(t *testing.T) {
	d := newTestDetector(t)

	inputs := []Input{
		{Text: strings.Repeat("urgent bitcoin parcel anydesk ", 1000), URL: "http://bit.ly/scam1@203.0.113.5:9999/login.apk", Locale: "en"},
		{Text: "xn-- 999.999.999.999", URL: "http://999.999.999.999:1/verify", Locale: "xx"},
		{URL: "http://%zz"},
		{Text: "nothing"},
	}

	for _, in := range inputs {
		got := d.Analyze(in)
		assert.GreaterOrEqual(t, got.Score, 0)
		assert.LessOrEqual(t, got.Score, 100)
	}
}

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, SeverityLow, SeverityOf(0))
	assert.Equal(t, SeverityLow, SeverityOf(29))
	assert.Equal(t, SeverityMedium, SeverityOf(30))
	assert.Equal(t, SeverityMedium, SeverityOf(69))
	assert.Equal(t, SeverityHigh, SeverityOf(70))
	assert.Equal(t, SeverityHigh, SeverityOf(100))
}

func TestSuggestReplyCategory(t *testing.T) {
	assert.Equal(t, ReplyBank, SuggestReplyCategory(nil))
	assert.Equal(t, ReplyBank, SuggestReplyCategory([]string{"urgency", "bank"}))
	assert.Equal(t, ReplyCrypto, SuggestReplyCategory([]string{"bank", "crypto"}))
	assert.Equal(t, ReplyDelivery, SuggestReplyCategory([]string{"delivery", "financial"}))
	assert.Equal(t, ReplyPrize, SuggestReplyCategory([]string{"gift_card"}))
	assert.Equal(t, ReplyTechSupport, SuggestReplyCategory([]string{"tech_support", "prize"}))
}

func TestDemoMessage(t *testing.T) {
	d := newTestDetector(t)

	locale, msg := d.DemoMessage("fr")
	assert.Equal(t, "en", locale)
	assert.Contains(t, msg, "http://secure-banking-alert.com")

	locale, msg = d.DemoMessage("tr")
	assert.Equal(t, "tr", locale)
	assert.Contains(t, msg, "Acil")
}

func TestDetectorOptionsApplyDefaults(t *testing.T) {
	set, err := rules.Default(logger.NewNop())
	require.NoError(t, err)

	d := NewDetector(set, Options{MaxTextLength: 500}, nil)
	assert.Equal(t, Options{
		MaxTextLength:  500,
		MaxRuleMatches: DefaultMaxRuleMatches,
		AgePolicy:      rules.AgePolicyUnknown,
	}, d.Options())
	assert.Equal(t, []string{"de", "en", "tr"}, d.Locales())
}

func TestDetectorUnaffectedByRuleSetCallers(t *testing.T) {
	d := newTestDetector(t)
	want := d.AnalyzeText("Urgent! Verify immediately", "en")

	for _, r := range d.rules.TextRules() {
		for locale := range r.Patterns {
			r.Patterns[locale] = nil
		}
	}
	brands := d.rules.Brands()
	for i := range brands {
		brands[i] = ""
	}

	assert.Equal(t, want, d.AnalyzeText("Urgent! Verify immediately", "en"))
	textRules, urlRules := d.RuleCounts()
	assert.Equal(t, 11, textRules)
	assert.Equal(t, 7, urlRules)
}
