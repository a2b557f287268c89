package urlutil

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// ipv4Pattern does not bound octets to 0-255; "999.999.999.999" matches.
var ipv4Pattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

const punycodePrefix = "xn--"

// IsValid reports whether candidate parses as an http or https URL with a host.
func IsValid(candidate string) bool {
	u, err := url.Parse(strings.TrimSpace(candidate))
	if err != nil {
		return false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}

	return u.Hostname() != ""
}

// Domain returns the lower-cased hostname of raw. Internationalized
// hostnames come back in their ASCII (xn--) form.
func Domain(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}

	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}

	return host, true
}

// Hostname returns the hostname of raw exactly as written, without case
// folding or IDNA conversion.
func Hostname(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Port returns the explicit port of raw, or "" when none is given.
func Port(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Port()
}

// Path returns the path of raw, or "" when it cannot be parsed.
func Path(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Path
}

// IsIPAddress reports whether the host of a URL, or a bare hostname, is a
// dotted-quad IPv4 literal.
func IsIPAddress(urlOrHost string) bool {
	host := strings.TrimSpace(urlOrHost)
	if strings.Contains(host, "://") {
		u, err := url.Parse(host)
		if err != nil {
			return false
		}
		host = u.Hostname()
	}
	return ipv4Pattern.MatchString(host)
}

// IsPunycode reports whether hostname starts with the ACE prefix.
func IsPunycode(hostname string) bool {
	return strings.HasPrefix(strings.ToLower(hostname), punycodePrefix)
}

// RegistrableRoot returns the last two labels of host, "login.bank.example.com"
// becomes "example.com".
func RegistrableRoot(host string) string {
	labels := strings.Split(strings.Trim(host, "."), ".")
	if len(labels) <= 2 {
		return strings.Join(labels, ".")
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
