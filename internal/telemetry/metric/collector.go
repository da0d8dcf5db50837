// Package metric provides Prometheus metrics for issuemesh.
package metric

import "github.com/prometheus/client_golang/prometheus"

// Stats is a point-in-time view of the live state sizes.
type Stats struct {
	Issues    int
	Observers int
}

// StatsSource returns current Stats. It is called on every scrape and must
// not block for long.
type StatsSource func() Stats

// Collector reports gauges that are cheaper to read at scrape time than to
// maintain on every change.
type Collector struct {
	source StatsSource

	issuesDesc    *prometheus.Desc
	observersDesc *prometheus.Desc
}

// NewCollector creates a collector that reads from source.
func NewCollector(source StatsSource) *Collector {
	return &Collector{
		source: source,
		issuesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "issues"),
			"Number of issues in the store.",
			nil, nil,
		),
		observersDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "observers_connected"),
			"Number of registered observers.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.issuesDesc
	ch <- c.observersDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.source == nil {
		return
	}
	stats := c.source()
	ch <- prometheus.MustNewConstMetric(c.issuesDesc, prometheus.GaugeValue, float64(stats.Issues))
	ch <- prometheus.MustNewConstMetric(c.observersDesc, prometheus.GaugeValue, float64(stats.Observers))
}
