// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// RealIP replaces RemoteAddr with the client address reported by a trusted
// reverse proxy. The X-Real-IP and X-Forwarded-For headers are ignored
// unless the connection itself comes from one of the trusted prefixes, so
// with no trusted proxies the headers never influence rate limiting.
func RealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := forwardedClient(r, trusted); ip.IsValid() {
				r.RemoteAddr = ip.String()
			}
			next.ServeHTTP(w, r)
		})
	}
}

// forwardedClient returns the client address behind a trusted peer, or the
// zero Addr when the headers must not be used.
func forwardedClient(r *http.Request, trusted []netip.Prefix) netip.Addr {
	peer, ok := parseIP(r.RemoteAddr)
	if !ok || !isTrusted(peer, trusted) {
		return netip.Addr{}
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		// Each proxy appends the address it saw, so the rightmost untrusted
		// hop is the first one a client could not have forged.
		var leftmost netip.Addr
		for i := len(hops) - 1; i >= 0; i-- {
			addr, ok := parseIP(hops[i])
			if !ok {
				return netip.Addr{}
			}
			if !isTrusted(addr, trusted) {
				return addr
			}
			leftmost = addr
		}
		return leftmost
	}

	if addr, ok := parseIP(r.Header.Get("X-Real-IP")); ok {
		return addr
	}
	return netip.Addr{}
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// parseIP accepts "ip" or "ip:port".
func parseIP(s string) (netip.Addr, bool) {
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
