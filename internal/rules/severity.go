package rules

// Severities holds the points contributed by the built-in URL heuristics.
// Keyword and regex rules carry their own severity.
type Severities struct {
	Shortener      int `json:"shortener"`
	TrustedDomain  int `json:"trusted_domain"`
	Blocklist      int `json:"blocklist"`
	NewDomain      int `json:"new_domain"`
	YoungDomain    int `json:"young_domain"`
	Punycode       int `json:"punycode"`
	Homograph      int `json:"homograph"`
	IPAddress      int `json:"ip_address"`
	SuspiciousPort int `json:"suspicious_port"`
	IPSensitive    int `json:"ip_sensitive_path"`
	LoginKeyword   int `json:"login_keyword"`
	Mismatch       int `json:"domain_mismatch"`
	AtSymbol       int `json:"at_symbol"`
}

// DefaultSeverities is the canonical table.
var DefaultSeverities = Severities{
	Shortener:      10,
	TrustedDomain:  5,
	Blocklist:      80,
	NewDomain:      40,
	YoungDomain:    15,
	Punycode:       60,
	Homograph:      60,
	IPAddress:      30,
	SuspiciousPort: 20,
	IPSensitive:    20,
	LoginKeyword:   15,
	Mismatch:       40,
	AtSymbol:       30,
}

// merge returns s with every positive field of o applied on top.
func (s Severities) merge(o Severities) Severities {
	pick := func(base, override int) int {
		if override > 0 {
			return override
		}
		return base
	}

	return Severities{
		Shortener:      pick(s.Shortener, o.Shortener),
		TrustedDomain:  pick(s.TrustedDomain, o.TrustedDomain),
		Blocklist:      pick(s.Blocklist, o.Blocklist),
		NewDomain:      pick(s.NewDomain, o.NewDomain),
		YoungDomain:    pick(s.YoungDomain, o.YoungDomain),
		Punycode:       pick(s.Punycode, o.Punycode),
		Homograph:      pick(s.Homograph, o.Homograph),
		IPAddress:      pick(s.IPAddress, o.IPAddress),
		SuspiciousPort: pick(s.SuspiciousPort, o.SuspiciousPort),
		IPSensitive:    pick(s.IPSensitive, o.IPSensitive),
		LoginKeyword:   pick(s.LoginKeyword, o.LoginKeyword),
		Mismatch:       pick(s.Mismatch, o.Mismatch),
		AtSymbol:       pick(s.AtSymbol, o.AtSymbol),
	}
}
