package rules

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/askwhyharsh/scamcheck/internal/urlutil"
)

// AgePolicy decides what an unknown domain's age is.
type AgePolicy string

const (
	// AgePolicyUnknown treats domains missing from the table as contributing no risk.
	AgePolicyUnknown AgePolicy = "unknown"
	// AgePolicySimulated derives a stable pseudo-age from a hash of the hostname.
	AgePolicySimulated AgePolicy = "simulated"
)

// simulatedAgeSpan bounds simulated ages to roughly ten years.
const simulatedAgeSpan = 3650

// ParseAgePolicy maps a config value to a policy, defaulting to AgePolicyUnknown.
func ParseAgePolicy(s string) AgePolicy {
	if AgePolicy(strings.ToLower(strings.TrimSpace(s))) == AgePolicySimulated {
		return AgePolicySimulated
	}
	return AgePolicyUnknown
}

// AgeTable maps hostnames to registration age in days.
type AgeTable struct {
	days map[string]int
}

func NewAgeTable(days map[string]int) AgeTable {
	m := make(map[string]int, len(days))
	for host, d := range days {
		host = strings.ToLower(strings.TrimSpace(host))
		if host == "" || d < 0 {
			continue
		}
		m[host] = d
	}
	return AgeTable{days: m}
}

// Lookup returns the age of host, trying the registrable root when the exact
// hostname has no entry.
func (t AgeTable) Lookup(host string) (int, bool) {
	host = strings.ToLower(host)
	if d, ok := t.days[host]; ok {
		return d, true
	}
	if d, ok := t.days[urlutil.RegistrableRoot(host)]; ok {
		return d, true
	}
	return 0, false
}

// Resolve is Lookup with the unknown case settled by policy.
func (t AgeTable) Resolve(host string, policy AgePolicy) (int, bool) {
	if d, ok := t.Lookup(host); ok {
		return d, true
	}
	if policy == AgePolicySimulated && host != "" {
		return SimulatedAge(host), true
	}
	return 0, false
}

// SimulatedAge is deterministic for a given host.
func SimulatedAge(host string) int {
	return int(xxhash.Sum64String(strings.ToLower(host)) % simulatedAgeSpan)
}
