package rules

import (
	"strings"

	"github.com/askwhyharsh/scamcheck/internal/urlutil"
)

// Shortener simulates short-link resolution from a static table.
type Shortener struct {
	links []ShortLink
}

func NewShortener(links []ShortLink) Shortener {
	kept := make([]ShortLink, 0, len(links))
	for _, l := range links {
		frag := strings.ToLower(strings.TrimSpace(l.Fragment))
		if frag == "" || strings.TrimSpace(l.Expanded) == "" {
			continue
		}
		kept = append(kept, ShortLink{Fragment: frag, Expanded: strings.TrimSpace(l.Expanded)})
	}
	return Shortener{links: kept}
}

// Expand returns the expansion of raw and true when a fragment is contained in
// the scheme-less URL. The first fragment in declaration order wins.
func (s Shortener) Expand(raw string) (string, bool) {
	stripped := strings.ToLower(urlutil.StripScheme(strings.TrimSpace(raw)))

	for _, l := range s.links {
		if strings.Contains(stripped, l.Fragment) {
			return l.Expanded, true
		}
	}
	return raw, false
}

func (s Shortener) Len() int {
	return len(s.links)
}
