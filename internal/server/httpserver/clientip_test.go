package httpserver

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trust      bool
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"peer", false, "192.168.1.1:12345", nil, "192.168.1.1"},
		{"ipv6 peer", false, "[::1]:8080", nil, "::1"},
		{"peer without port", false, "192.168.1.1", nil, "192.168.1.1"},
		{"untrusted forwarded", false, "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "10.0.0.1"},
		{"untrusted real ip", false, "10.0.0.1:1", map[string]string{"X-Real-IP": "203.0.113.9"}, "10.0.0.1"},
		{"trusted forwarded", true, "10.0.0.1:1", map[string]string{"X-Forwarded-For": " 203.0.113.5 , 10.0.0.1"}, "203.0.113.5"},
		{"trusted real ip", true, "10.0.0.1:1", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
		{"trusted empty forwarded", true, "10.0.0.1:1", map[string]string{"X-Forwarded-For": " , 10.0.0.2"}, "10.0.0.1"},
		{"trusted no headers", true, "10.0.0.1:1", nil, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(tt.trust)(req); got != tt.want {
				t.Errorf("ClientIP(%v) = %q, want %q", tt.trust, got, tt.want)
			}
		})
	}
}
