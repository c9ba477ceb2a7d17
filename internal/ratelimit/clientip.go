package ratelimit

import (
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP returns the address limits are keyed on. Forwarding headers are
// only read when trustProxy is set; then the rightmost public hop in
// X-Forwarded-For wins, since hops to its left are client supplied.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip, ok := forwardedFor(r.Header.Get("X-Forwarded-For")); ok {
			return ip
		}
		if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
			return addr.Unmap().String()
		}
	}

	if ap, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return ap.Addr().Unmap().String()
	}
	if addr, err := netip.ParseAddr(r.RemoteAddr); err == nil {
		return addr.Unmap().String()
	}
	return r.RemoteAddr
}

func forwardedFor(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	hops := strings.Split(header, ",")
	var last netip.Addr
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			continue
		}
		addr = addr.Unmap()
		if !internal(addr) {
			return addr.String(), true
		}
		if !last.IsValid() {
			last = addr
		}
	}
	if last.IsValid() {
		return last.String(), true
	}
	return "", false
}

func internal(addr netip.Addr) bool {
	return addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast()
}

// MaskEmail keeps enough of an address to correlate log lines without
// recording it in full.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(normalizeEmail(email), "@")
	if !ok {
		return "***"
	}
	if len(local) > 2 {
		return local[:2] + "***@" + domain
	}
	return "***@" + domain
}
