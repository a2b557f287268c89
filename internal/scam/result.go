package scam

// Reason codes emitted by the built-in heuristics. Text and URL rules use
// their own ids as reasons.
const (
	ReasonInputTooLong   = "input_too_long"
	ReasonShortener      = "shortener"
	ReasonInvalidURL     = "invalid_url"
	ReasonTrustedDomain  = "trusted_domain_match"
	ReasonBlocklist      = "blacklist_match"
	ReasonNewDomain      = "new_domain"
	ReasonPunycode       = "punycode"
	ReasonHomograph      = "homograph_spoof"
	ReasonIPAddress      = "ip_address_url"
	ReasonSuspiciousPort = "suspicious_port"
	ReasonLoginKeyword   = "login_keyword"
	ReasonMismatch       = "domain_mismatch"
	ReasonAtSymbol       = "at_symbol"
)

// Tags emitted by the built-in heuristics.
const (
	TagTruncated            = "truncated"
	TagURLShortener         = "url_shortener"
	TagTrustedDomain        = "trusted_domain"
	TagMaliciousDomain      = "malicious_domain"
	TagNewlyRegistered      = "newly_registered"
	TagHomographRisk        = "homograph_risk"
	TagSensitivePath        = "sensitive_path"
	TagPhishingIP           = "phishing_ip"
	TagImpersonation        = "impersonation"
	TagCredentialHarvesting = "credential_harvesting"
)

const maxScore = 100

// Result is the outcome of one analysis. Reasons keep first-seen order and
// never repeat; Tags is a set kept in insertion order.
type Result struct {
	Score       int      `json:"score"`
	Reasons     []string `json:"reasons"`
	Tags        []string `json:"tags"`
	AnalyzedURL string   `json:"analyzed_url,omitempty"`
}

// Empty reports whether nothing fired.
func (r Result) Empty() bool {
	return r.Score == 0 && len(r.Reasons) == 0 && len(r.Tags) == 0
}

func emptyResult() Result {
	return Result{Reasons: []string{}, Tags: []string{}}
}

// builder accumulates severity, reasons and tags for a single call.
type builder struct {
	total       int
	reasons     []string
	tags        []string
	seenReasons map[string]struct{}
	seenTags    map[string]struct{}
	analyzedURL string
}

func newBuilder() *builder {
	return &builder{
		reasons:     []string{},
		tags:        []string{},
		seenReasons: make(map[string]struct{}),
		seenTags:    make(map[string]struct{}),
	}
}

func (b *builder) add(points int) {
	b.total += points
}

func (b *builder) reason(ids ...string) {
	for _, id := range ids {
		if _, ok := b.seenReasons[id]; ok || id == "" {
			continue
		}
		b.seenReasons[id] = struct{}{}
		b.reasons = append(b.reasons, id)
	}
}

func (b *builder) tag(tags ...string) {
	for _, t := range tags {
		if _, ok := b.seenTags[t]; ok || t == "" {
			continue
		}
		b.seenTags[t] = struct{}{}
		b.tags = append(b.tags, t)
	}
}

func (b *builder) has(id string) bool {
	_, ok := b.seenReasons[id]
	return ok
}

func (b *builder) result() Result {
	return Result{
		Score:       clamp(b.total),
		Reasons:     b.reasons,
		Tags:        b.tags,
		AnalyzedURL: b.analyzedURL,
	}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
