package rules

import "strings"

// Reputation is a static allow/block list. Membership is an exact match or a
// subdomain of a listed domain: "sub.google.com" matches "google.com".
type Reputation struct {
	allow []string
	block []string
}

func NewReputation(allow, block []string) Reputation {
	return Reputation{
		allow: normalizeDomains(allow),
		block: normalizeDomains(block),
	}
}

func (r Reputation) Allowed(domain string) bool {
	return listContains(r.allow, domain)
}

func (r Reputation) Blocked(domain string) bool {
	return listContains(r.block, domain)
}

func listContains(list []string, domain string) bool {
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))
	if domain == "" {
		return false
	}

	for _, d := range list {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

func normalizeDomains(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))

	for _, d := range in {
		d = strings.ToLower(strings.Trim(strings.TrimSpace(d), "."))
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
