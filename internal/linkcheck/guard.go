package linkcheck

import (
	"net/netip"
	"net/url"
	"strings"
)

const (
	ReasonInvalidURL       = "URL inválida"
	ReasonProtocol         = "protocol not allowed"
	ReasonInternalBlocked  = "internal access blocked"
	ReasonPrivateIPBlocked = "private IP not allowed"
)

// GuardError is returned by CheckURL when a URL must not be probed.
type GuardError struct {
	URL    string
	Reason string
}

func (e *GuardError) Error() string { return e.Reason }

var internalHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"0.0.0.0":   true,
	"::1":       true,
}

var privateNets = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

// CheckURL rejects URLs that are malformed, not http(s), or point at
// loopback, unspecified or private IPv4 space (IPv4-mapped forms included). It never touches the network.
func CheckURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return &GuardError{URL: raw, Reason: ReasonInvalidURL}
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return &GuardError{URL: raw, Reason: ReasonProtocol}
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return &GuardError{URL: raw, Reason: ReasonInvalidURL}
	}
	if internalHosts[host] {
		return &GuardError{URL: raw, Reason: ReasonInternalBlocked}
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		if addr.IsLoopback() || addr.IsUnspecified() {
			return &GuardError{URL: raw, Reason: ReasonInternalBlocked}
		}
		for _, p := range privateNets {
			if p.Contains(addr) {
				return &GuardError{URL: raw, Reason: ReasonPrivateIPBlocked}
			}
		}
	}
	return nil
}

// SchemeOnly accepts any well-formed http(s) URL. Handy when probing
// servers on loopback, e.g. in tests.
func SchemeOnly(raw string) error {
	err := CheckURL(raw)
	if ge, ok := err.(*GuardError); ok && (ge.Reason == ReasonInternalBlocked || ge.Reason == ReasonPrivateIPBlocked) {
		return nil
	}
	return err
}
