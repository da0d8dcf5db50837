package metric

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.registry == nil {
		t.Error("registry field is nil")
	}
	if r.MutationsTotal == nil || r.BroadcastEvents == nil || r.RequestsTotal == nil {
		t.Error("counter vectors must be initialized")
	}
	if r.SnapshotWriteDuration == nil {
		t.Error("SnapshotWriteDuration is nil")
	}
}

func TestGlobal(t *testing.T) {
	r1 := Global()
	r2 := Global()
	if r1 != r2 {
		t.Error("Global() should return the same instance")
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.ObserveMutation("create_issue", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	bodyStr := string(body)

	for _, want := range []string{
		"go_goroutines",
		"process_",
		`issuemesh_mutations_total{kind="create_issue",result="ok"} 1`,
	} {
		if !strings.Contains(bodyStr, want) {
			t.Errorf("expected %s in metrics output", want)
		}
	}
}

func TestMutationMetrics(t *testing.T) {
	r := NewRegistry()

	r.ObserveMutation("update_issue", nil)
	r.ObserveMutation("update_issue", nil)
	r.ObserveMutation("update_issue", errors.New("boom"))

	if got := testutil.ToFloat64(r.MutationsTotal.WithLabelValues("update_issue", ResultOK)); got != 2 {
		t.Errorf("ok mutations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.MutationsTotal.WithLabelValues("update_issue", ResultError)); got != 1 {
		t.Errorf("error mutations = %v, want 1", got)
	}
}

func TestBroadcastMetrics(t *testing.T) {
	r := NewRegistry()

	r.AddBroadcast("issue_created", 3)
	r.AddBroadcast("issue_created", 0)
	r.AddBroadcast("init", 1)

	if got := testutil.ToFloat64(r.BroadcastEvents.WithLabelValues("issue_created")); got != 3 {
		t.Errorf("issue_created = %v, want 3", got)
	}
	if got := testutil.ToFloat64(r.BroadcastEvents.WithLabelValues("init")); got != 1 {
		t.Errorf("init = %v, want 1", got)
	}
}

func TestHistoryMetrics(t *testing.T) {
	r := NewRegistry()

	r.IncHistoryCommit(ResultOK)
	r.IncHistoryCommit(ResultSkipped)
	r.IncHistoryPush(ResultError)
	r.IncHistoryDropped()
	r.IncHistoryDropped()

	if got := testutil.ToFloat64(r.HistoryCommits.WithLabelValues(ResultOK)); got != 1 {
		t.Errorf("commits ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.HistoryPushes.WithLabelValues(ResultError)); got != 1 {
		t.Errorf("pushes error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.HistoryDropped); got != 2 {
		t.Errorf("dropped = %v, want 2", got)
	}
}

func TestSnapshotAndRequestMetrics(t *testing.T) {
	r := NewRegistry()

	r.ObserveSnapshotWrite(3 * time.Millisecond)
	r.IncRequest(http.MethodGet, http.StatusOK)
	r.IncRequest(http.MethodGet, http.StatusTooManyRequests)

	if got := testutil.CollectAndCount(r.SnapshotWriteDuration); got != 1 {
		t.Errorf("snapshot histogram series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("GET", "429")); got != 1 {
		t.Errorf("429 requests = %v, want 1", got)
	}
}

func TestNilRegistry(t *testing.T) {
	var r *Registry

	// None of these may panic.
	r.ObserveMutation("create_issue", nil)
	r.AddBroadcast("init", 1)
	r.ObserveSnapshotWrite(time.Millisecond)
	r.IncHistoryCommit(ResultOK)
	r.IncHistoryPush(ResultOK)
	r.IncHistoryDropped()
	r.IncRequest(http.MethodGet, http.StatusOK)
	if err := r.Register(NewCollector(nil)); err != nil {
		t.Errorf("Register on nil registry = %v", err)
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil registry handler status = %d, want 404", rec.Code)
	}
}
