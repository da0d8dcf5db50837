// Package metric provides Prometheus metrics for issuemesh.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry, typed recording helpers and the
//     HTTP handler
//   - collector.go: scrape-time collector for store and hub sizes
//
// Metrics include:
//
//   - Mutation counters by kind and result
//   - Broadcast event counters by type
//   - Snapshot write latency
//   - History commit, push and drop counters
//   - HTTP request counters
//
// Metrics are exposed at /metrics in Prometheus format. All recording
// methods are safe to call on a nil *Registry, so components can run
// without metrics.
package metric
