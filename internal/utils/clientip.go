package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Proxy headers consulted by ClientIP, most specific first.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// ParseAddr parses "ip", "ip:port" or "[v6]:port". IPv4-mapped IPv6
// addresses are unmapped so they match IPv4 rules.
func ParseAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// ClientIP resolves the address a request is keyed and filtered by.
// Proxy headers are only honored with trustProxy; X-Forwarded-For
// contributes its left-most entry. An unparseable RemoteAddr is
// returned verbatim so it still works as a rate-limit key.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, h := range proxyHeaders {
			v := r.Header.Get(h)
			if i := strings.IndexByte(v, ','); i >= 0 {
				v = v[:i]
			}
			if addr, ok := ParseAddr(v); ok {
				return addr.String()
			}
		}
	}
	if addr, ok := ParseAddr(r.RemoteAddr); ok {
		return addr.String()
	}
	return r.RemoteAddr
}

// IPMatcher matches addresses against a list of IPs and CIDRs. A bare
// IP is stored as a single-address prefix.
type IPMatcher struct {
	prefixes []netip.Prefix
}

// NewIPMatcher ignores entries that are neither an IP nor a CIDR.
func NewIPMatcher(list []string) *IPMatcher {
	m := &IPMatcher{}
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if p, err := netip.ParsePrefix(s); err == nil {
			m.prefixes = append(m.prefixes, p.Masked())
			continue
		}
		if addr, ok := ParseAddr(s); ok {
			m.prefixes = append(m.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return m
}

func (m *IPMatcher) IsEmpty() bool { return len(m.prefixes) == 0 }

func (m *IPMatcher) Allow(ip string) bool {
	addr, ok := ParseAddr(ip)
	if !ok {
		return false
	}
	for _, p := range m.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
