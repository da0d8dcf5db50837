package httpserver

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the function used to key rate limits and audit lines.
// Without trustProxy only the TCP peer address counts, since any client can
// send X-Forwarded-For. Behind a reverse proxy, trustProxy takes the first
// X-Forwarded-For entry, then X-Real-IP.
func ClientIP(trustProxy bool) func(*http.Request) string {
	if !trustProxy {
		return peerIP
	}
	return func(r *http.Request) string {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
		return peerIP(r)
	}
}

func peerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
