// Package urls upgrades insecure absolute URLs in bulletin markup.
// Which hosts get upgraded is decided by a Policy so the validator and the
// upgrader always agree on whether a secure form exists.
package urls

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Mode selects how hosts qualify for an upgrade.
type Mode string

const (
	// ModeAll upgrades every host except those known to lack TLS.
	ModeAll Mode = "all"
	// ModeAllowlist upgrades only hosts known to serve TLS.
	ModeAllowlist Mode = "allowlist"
)

// DefaultSecureHosts are the hosts bulletins commonly link to that are
// known to serve HTTPS. Used by ModeAllowlist when no list is configured.
var DefaultSecureHosts = []string{
	"lakealmanorcountryclub.com",
	"cdn-ip.allevents.in",
	"allevents.in",
	"maps.app.goo.gl",
	"googleusercontent.com",
	"imgur.com",
	"sierradailynews.com",
	"foreupsoftware.com",
	"us02web.zoom.us",
	"hoamco.zoom.us",
	"placehold.co",
}

// ParseMode converts a configured policy name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeAll:
		return ModeAll, nil
	case ModeAllowlist:
		return m, nil
	default:
		return "", fmt.Errorf("unknown URL policy %q (want all or allowlist)", s)
	}
}

// Policy decides which http:// URLs have a secure counterpart.
type Policy struct {
	Mode          Mode
	SecureHosts   []string
	InsecureHosts []string
}

// DefaultPolicy upgrades every http:// URL.
func DefaultPolicy() Policy {
	return Policy{Mode: ModeAll}
}

// IsInsecure reports whether raw is an absolute http:// URL.
func IsInsecure(raw string) bool {
	raw = strings.TrimLeft(raw, " \t\n\r\f")
	return len(raw) >= 7 && strings.EqualFold(raw[:7], "http://")
}

// Secure returns the https:// form of raw and true when the policy knows
// one exists. The path, query and fragment are kept byte-for-byte. An
// explicit :80 is dropped; any other explicit port has no known secure
// counterpart.
func (p Policy) Secure(raw string) (string, bool) {
	trimmed := strings.TrimLeft(raw, " \t\n\r\f")
	if !IsInsecure(trimmed) {
		return raw, false
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return raw, false
	}
	host := u.Hostname()
	if host == "" {
		return raw, false
	}
	port := u.Port()
	if port != "" && port != "80" {
		return raw, false
	}
	if !p.allows(host) {
		return raw, false
	}

	rest := trimmed[len("http://"):]
	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		end = len(rest)
	}
	authority := rest[:end]
	if port == "80" {
		authority = strings.TrimSuffix(authority, ":80")
	}
	return "https://" + authority + rest[end:], true
}

func (p Policy) allows(host string) bool {
	if matchHost(host, p.InsecureHosts) {
		return false
	}
	if p.Mode == ModeAllowlist {
		secure := p.SecureHosts
		if len(secure) == 0 {
			secure = DefaultSecureHosts
		}
		return matchHost(host, secure)
	}
	return true
}

// matchHost matches host against list entries exactly or as a subdomain.
func matchHost(host string, list []string) bool {
	h := strings.TrimSuffix(strings.ToLower(host), ".")
	for _, entry := range list {
		e := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(entry)), ".")
		if e == "" {
			continue
		}
		if h == e || strings.HasSuffix(h, "."+e) {
			return true
		}
	}
	return false
}

var insecureHostPattern = regexp.MustCompile(`(?i)http://([^/\s"'?#<>:@]+)`)

// InsecureHosts lists the distinct hosts referenced over http:// in src,
// sorted. Used to decide which hosts to probe for TLS.
func InsecureHosts(src string) []string {
	seen := make(map[string]bool)
	var hosts []string
	for _, m := range insecureHostPattern.FindAllStringSubmatch(src, -1) {
		h := strings.ToLower(m[1])
		if !seen[h] {
			seen[h] = true
			hosts = append(hosts, h)
		}
	}
	sort.Strings(hosts)
	return hosts
}
