package httpapi

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// forwardedIPHeaders are trusted in order. The pool runs behind Cloudflare or
// a single nginx hop, both of which overwrite these headers.
var forwardedIPHeaders = []string{
	"CF-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// resolveClientIP returns the caller address used for login throttling and
// audit logs, or "" when nothing parses.
func resolveClientIP(_ context.Context, r *http.Request) string {
	for _, header := range forwardedIPHeaders {
		if addr, ok := parseIP(firstHop(r.Header.Get(header))); ok {
			return addr.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if addr, ok := parseIP(host); ok {
		return addr.String()
	}
	return ""
}

func firstHop(value string) string {
	first, _, _ := strings.Cut(value, ",")
	return strings.TrimSpace(first)
}

func parseIP(raw string) (netip.Addr, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return netip.Addr{}, false
	}
	if addrPort, err := netip.ParseAddrPort(raw); err == nil {
		return addrPort.Addr().Unmap(), true
	}
	addr, err := netip.ParseAddr(strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}
