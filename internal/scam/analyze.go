package scam

import (
	"strings"

	"github.com/askwhyharsh/scamcheck/internal/urlutil"
)

// Severity buckets a score for display and history.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func SeverityOf(score int) Severity {
	switch {
	case score < 30:
		return SeverityLow
	case score < 70:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// Input is one submission. When URL is blank and AutoDetect is set, the
// first URL found in Text is analyzed.
type Input struct {
	Text       string
	URL        string
	Locale     string
	AutoDetect bool
}

// Analysis is a combined result plus the presentation details derived from it.
type Analysis struct {
	Result
	Severity      Severity `json:"severity"`
	ReplyCategory string   `json:"reply_category"`
	DetectedURLs  []string `json:"detected_urls"`
	Domain        string   `json:"domain,omitempty"`
}

// Analyze runs the text and URL scorers independently and combines them.
func (d *Detector) Analyze(in Input) Analysis {
	detected := urlutil.ExtractAll(in.Text)

	target := strings.TrimSpace(in.URL)
	if target == "" && in.AutoDetect && len(detected) > 0 {
		target = detected[0]
	}

	textResult := d.AnalyzeText(in.Text, in.Locale)
	urlResult := emptyResult()
	if target != "" {
		urlResult = d.AnalyzeURL(target, in.Text)
	}

	combined := Combine(textResult, urlResult)

	var domain string
	if target != "" {
		domain, _ = urlutil.Domain(target)
	}

	return Analysis{
		Result:        combined,
		Severity:      SeverityOf(combined.Score),
		ReplyCategory: SuggestReplyCategory(combined.Tags),
		DetectedURLs:  detected,
		Domain:        domain,
	}
}
