// Package metric provides Prometheus metrics for issuemesh.
package metric

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "issuemesh"

// Result label values.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Mutation metrics
	MutationsTotal *prometheus.CounterVec

	// Broadcast metrics
	BroadcastEvents *prometheus.CounterVec

	// Storage metrics
	SnapshotWriteDuration prometheus.Histogram

	// History metrics
	HistoryCommits *prometheus.CounterVec
	HistoryPushes  *prometheus.CounterVec
	HistoryDropped prometheus.Counter

	// Request metrics
	RequestsTotal *prometheus.CounterVec
}

var (
	globalRegistry *Registry
	globalOnce     sync.Once
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns an HTTP handler for the /metrics endpoint of the global
// registry.
func Handler() http.Handler {
	return Global().Handler()
}

// NewRegistry creates a new metrics registry with the Go runtime and
// process collectors registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		MutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Mutation requests processed, by kind and result.",
		}, []string{"kind", "result"}),
		BroadcastEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_events_total",
			Help:      "Events delivered to observers, by event type.",
		}, []string{"type"}),
		SnapshotWriteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_write_duration_seconds",
			Help:      "Time spent writing the durable snapshot.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		HistoryCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_commits_total",
			Help:      "Version history commits, by result.",
		}, []string{"result"}),
		HistoryPushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_pushes_total",
			Help:      "Version history pushes, by result.",
		}, []string{"result"}),
		HistoryDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_dropped_total",
			Help:      "History entries dropped because the queue was full.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests served, by method and status code.",
		}, []string{"method", "status"}),
	}

	reg.MustRegister(
		r.MutationsTotal,
		r.BroadcastEvents,
		r.SnapshotWriteDuration,
		r.HistoryCommits,
		r.HistoryPushes,
		r.HistoryDropped,
		r.RequestsTotal,
	)
	return r
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Register adds a custom collector.
func (r *Registry) Register(c prometheus.Collector) error {
	if r == nil {
		return nil
	}
	return r.registry.Register(c)
}

// Gatherer exposes the underlying registry for tests and embedding.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveMutation counts a processed mutation. err == nil counts as ok.
func (r *Registry) ObserveMutation(kind string, err error) {
	if r == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.MutationsTotal.WithLabelValues(kind, result).Inc()
}

// AddBroadcast counts events delivered to observers.
func (r *Registry) AddBroadcast(eventType string, delivered int) {
	if r == nil || delivered <= 0 {
		return
	}
	r.BroadcastEvents.WithLabelValues(eventType).Add(float64(delivered))
}

// ObserveSnapshotWrite records the duration of one snapshot write.
func (r *Registry) ObserveSnapshotWrite(d time.Duration) {
	if r == nil {
		return
	}
	r.SnapshotWriteDuration.Observe(d.Seconds())
}

// IncHistoryCommit counts a history commit attempt by result.
func (r *Registry) IncHistoryCommit(result string) {
	if r == nil {
		return
	}
	r.HistoryCommits.WithLabelValues(result).Inc()
}

// IncHistoryPush counts a history push attempt by result.
func (r *Registry) IncHistoryPush(result string) {
	if r == nil {
		return
	}
	r.HistoryPushes.WithLabelValues(result).Inc()
}

// IncHistoryDropped counts a history entry dropped on a full queue.
func (r *Registry) IncHistoryDropped() {
	if r == nil {
		return
	}
	r.HistoryDropped.Inc()
}

// IncRequest counts a served HTTP request.
func (r *Registry) IncRequest(method string, status int) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
