package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
)

func TestRealIP(t *testing.T) {
	proxies := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("127.0.0.1/32"),
	}

	tests := []struct {
		name       string
		trusted    []netip.Prefix
		remoteAddr string
		xff        string
		xRealIP    string
		want       string
	}{
		{"no proxies ignores headers", nil, "203.0.113.9:5000", "198.51.100.1", "198.51.100.2", "203.0.113.9"},
		{"untrusted peer ignores headers", proxies, "203.0.113.9:5000", "198.51.100.1", "", "203.0.113.9"},
		{"trusted peer uses forwarded client", proxies, "10.1.2.3:5000", "198.51.100.1", "", "198.51.100.1"},
		{"spoofed leftmost hop is skipped", proxies, "10.1.2.3:5000", "1.2.3.4, 198.51.100.1", "", "198.51.100.1"},
		{"trusted hops are skipped", proxies, "127.0.0.1:5000", "198.51.100.1, 10.9.9.9", "", "198.51.100.1"},
		{"all hops trusted uses leftmost", proxies, "127.0.0.1:5000", "10.0.0.5, 10.0.0.6", "", "10.0.0.5"},
		{"malformed hop ignores headers", proxies, "10.1.2.3:5000", "198.51.100.1, not-an-ip", "", "10.1.2.3"},
		{"x-real-ip from trusted peer", proxies, "10.1.2.3:5000", "", "198.51.100.7", "198.51.100.7"},
		{"ipv4-mapped peer", proxies, "[::ffff:10.1.2.3]:5000", "198.51.100.1", "", "198.51.100.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := RealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIP(r)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
