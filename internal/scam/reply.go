package scam

import "github.com/askwhyharsh/scamcheck/internal/rules"

// Safe-reply template categories.
const (
	ReplyBank        = "bank"
	ReplyDelivery    = "delivery"
	ReplyCrypto      = "crypto"
	ReplyPrize       = "prize"
	ReplyTechSupport = "tech_support"
)

// replyPriority maps tags to a reply category, most specific first.
var replyPriority = []struct {
	tag      string
	category string
}{
	{"crypto", ReplyCrypto},
	{"investment", ReplyCrypto},
	{"delivery", ReplyDelivery},
	{"tech_support", ReplyTechSupport},
	{"prize", ReplyPrize},
	{"gift_card", ReplyPrize},
	{"bank", ReplyBank},
	{"financial", ReplyBank},
}

// SuggestReplyCategory picks the reply template category for a set of tags,
// defaulting to bank.
func SuggestReplyCategory(tags []string) string {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}

	for _, p := range replyPriority {
		if _, ok := set[p.tag]; ok {
			return p.category
		}
	}
	return ReplyBank
}

var demoMessages = map[string]string{
	rules.LocaleEnglish: "Urgent! Your account has been suspended. Verify immediately at: http://secure-banking-alert.com",
	rules.LocaleTurkish: "Acil! Hesabınız askıya alındı. Hemen doğrulamak için tıklayın: http://banka-guvenlik-tr.com.tr.tc",
	rules.LocaleGerman:  "Dringend! Ihr Konto wurde gesperrt. Bestätigen Sie es sofort hier: http://secure-bank-de.xyz",
}

// DemoMessage returns a sample scam message for locale.
func (d *Detector) DemoMessage(locale string) (string, string) {
	active := d.rules.ResolveLocale(locale)
	if msg, ok := demoMessages[active]; ok {
		return active, msg
	}
	return rules.DefaultLocale, demoMessages[rules.DefaultLocale]
}
