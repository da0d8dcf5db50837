package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantOrigin string
		wantVary   bool
		wantStatus int
	}{
		{"allowed origin", []string{"https://a.example"}, "https://a.example", http.MethodGet, "https://a.example", true, http.StatusOK},
		{"foreign origin", []string{"https://a.example"}, "https://b.example", http.MethodGet, "", true, http.StatusOK},
		{"allow all", nil, "https://b.example", http.MethodGet, "https://b.example", false, http.StatusOK},
		{"wildcard entry", []string{"https://a.example", "*"}, "https://c.example", http.MethodGet, "https://c.example", false, http.StatusOK},
		{"no origin", nil, "", http.MethodGet, "", false, http.StatusOK},
		{"preflight", nil, "https://b.example", http.MethodOptions, "https://b.example", false, http.StatusNoContent},
		{"rejected preflight", []string{"https://a.example"}, "https://b.example", http.MethodOptions, "", true, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/issues", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			CORS(tt.allowed)(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Vary") == "Origin"; got != tt.wantVary {
				t.Errorf("Vary: Origin = %v, want %v", got, tt.wantVary)
			}
			if tt.wantOrigin != "" && rec.Header().Get("Access-Control-Expose-Headers") == "" {
				t.Error("Access-Control-Expose-Headers missing")
			}
		})
	}
}
