package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/issuemesh-go/internal/telemetry/logger"
	"github.com/yndnr/issuemesh-go/internal/telemetry/metric"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"none", "", false},
		{"well formed", "lb-7f3a:01.2_x", true},
		{"uuid", "3f2504e0-4f89-11d3-9a0c-0305e82c3301", true},
		{"spaces", "a b", false},
		{"newline", "abc\nlevel=ERROR", false},
		{"quote", `x"y`, false},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = logger.RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/issues", nil)
			if tt.incoming != "" {
				req.Header.Set(HeaderRequestID, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(HeaderRequestID)
			if got != seen {
				t.Errorf("header %q and context %q differ", got, seen)
			}
			if tt.keep {
				if got != tt.incoming {
					t.Errorf("request id = %q, want %q", got, tt.incoming)
				}
				return
			}
			if !strings.HasPrefix(got, "req-") || len(got) != len("req-")+26 {
				t.Errorf("request id = %q, want req-<ulid>", got)
			}
		})
	}
}

func TestChain(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("recover"), mark("request_id"), mark("audit"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := strings.Join(order, ","); got != "recover,request_id,audit,handler" {
		t.Errorf("order = %s", got)
	}
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil issue")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/issues", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "IM-SYS-5000" {
		t.Errorf("X-Error-Code = %q", got)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line: %v", err)
	}
	if entry["panic"] != "nil issue" {
		t.Errorf("panic = %v", entry["panic"])
	}
	if stack, _ := entry["stack"].(string); !strings.Contains(stack, "goroutine") {
		t.Errorf("stack missing: %q", stack)
	}

	rec = httptest.NewRecorder()
	Recover(log)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("pass-through status = %d", rec.Code)
	}
}

func TestRecover_AbortHandler(t *testing.T) {
	h := Recover(slog.Default())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if v := recover(); v != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", v)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	t.Error("ErrAbortHandler was swallowed")
}

func TestAudit(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
		wantMsg   string
	}{
		{"success", "/api/v1/issues", http.StatusOK, "INFO", "request completed"},
		{"health check", "/health", http.StatusOK, "DEBUG", "request completed"},
		{"failing readiness check", "/ready", http.StatusServiceUnavailable, "ERROR", "request failed"},
		{"client error", "/api/v1/issues/9", http.StatusNotFound, "WARN", "request rejected"},
		{"server error", "/api/v1/issues", http.StatusInternalServerError, "ERROR", "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := logger.New(logger.Config{Level: "debug", Output: &buf})
			if err != nil {
				t.Fatal(err)
			}
			t.Cleanup(func() { _ = logger.SetLevel("info") })
			metrics := metric.NewRegistry()

			h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}), RequestID(), Audit(log, metrics, ClientIP(false)))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.RemoteAddr = "192.0.2.10:5555"
			h.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log line %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.wantLevel || entry["msg"] != tt.wantMsg {
				t.Errorf("level/msg = %v/%v, want %s/%s", entry["level"], entry["msg"], tt.wantLevel, tt.wantMsg)
			}
			if id, _ := entry["request_id"].(string); !strings.HasPrefix(id, "req-") {
				t.Errorf("request_id = %v", entry["request_id"])
			}
			if entry["client_ip"] != "192.0.2.10" || entry["path"] != tt.path {
				t.Errorf("entry = %v", entry)
			}
			if got := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("GET", strconv.Itoa(tt.status))); got != 1 {
				t.Errorf("requests_total = %v, want 1", got)
			}
		})
	}
}
