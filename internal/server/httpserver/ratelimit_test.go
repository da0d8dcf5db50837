package httpserver

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestRateLimit(t *testing.T) {
	h := RateLimit(0.001, 2, ClientIP(false))(okHandler())

	do := func(remote, xff string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/issues", nil)
		req.RemoteAddr = remote
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do("10.0.0.99:1000", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}

	rec := do("10.0.0.99:1001", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" || rec.Header().Get("X-Error-Code") != "IM-SYS-4290" {
		t.Errorf("headers = %v", rec.Header())
	}

	// A forged header does not buy a fresh bucket when proxies are untrusted.
	if rec := do("10.0.0.99:1002", "203.0.113.1"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("spoofed X-Forwarded-For: status = %d, want 429", rec.Code)
	}

	if rec := do("10.0.0.100:1000", ""); rec.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", rec.Code)
	}
}

func TestRateLimit_TrustedProxy(t *testing.T) {
	h := RateLimit(0.001, 1, ClientIP(true))(okHandler())

	for i, client := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/issues", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("client %d behind proxy: status = %d, want 200", i, rec.Code)
		}
	}
}

func TestRateLimit_Concurrent(t *testing.T) {
	h := RateLimit(1000, 1000, ClientIP(false))(okHandler())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.0.1:1234"
			h.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()
}

func TestIPLimiters_Sweep(t *testing.T) {
	l := newIPLimiters(1, 0)
	start := time.Now()

	l.allow("10.0.0.1", start)
	l.allow("10.0.0.2", start)
	if l.size() != 2 {
		t.Fatalf("size = %d, want 2", l.size())
	}

	later := start.Add(2 * limiterIdle)
	l.allow("10.0.0.3", later)
	if l.size() != 1 {
		t.Errorf("size after sweep = %d, want 1", l.size())
	}

	// burst 0 is raised to 1, and the bucket refills at 1/s.
	if l.allow("10.0.0.3", later) {
		t.Error("second immediate request should be limited")
	}
	if !l.allow("10.0.0.3", later.Add(2*time.Second)) {
		t.Error("bucket should have refilled")
	}
}
