// Package monitor exposes the statistics tracker to external observability
// systems. The tracker stays the single source of truth; this package only
// reads its snapshots.
package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quorate/mediate-go/stats"
)

// TrackerCollector exports the tracker's global counters as Prometheus
// metrics. Register it with a prometheus.Registerer; every scrape reads a
// fresh snapshot.
type TrackerCollector struct {
	tracker *stats.Tracker

	messages *prometheus.Desc
	sessions *prometheus.Desc
}

// NewTrackerCollector creates a collector over the given tracker
func NewTrackerCollector(tracker *stats.Tracker) *TrackerCollector {
	return &TrackerCollector{
		tracker: tracker,
		messages: prometheus.NewDesc(
			"mediate_messages_total",
			"Messages dispatched through the mediator, by category and message type.",
			[]string{"category", "type"},
			nil,
		),
		sessions: prometheus.NewDesc(
			"mediate_active_sessions",
			"Caller sessions currently tracked by the statistics tracker.",
			nil,
			nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *TrackerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.messages
	ch <- c.sessions
}

// Collect implements prometheus.Collector
func (c *TrackerCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot := c.tracker.GlobalStatistics()

	for typeName, count := range snapshot.Queries {
		ch <- prometheus.MustNewConstMetric(c.messages, prometheus.CounterValue, float64(count), "query", typeName)
	}
	for typeName, count := range snapshot.Commands {
		ch <- prometheus.MustNewConstMetric(c.messages, prometheus.CounterValue, float64(count), "command", typeName)
	}
	for typeName, count := range snapshot.Notifications {
		ch <- prometheus.MustNewConstMetric(c.messages, prometheus.CounterValue, float64(count), "notification", typeName)
	}

	ch <- prometheus.MustNewConstMetric(c.sessions, prometheus.GaugeValue, float64(c.tracker.SessionCount()))
}

var _ prometheus.Collector = (*TrackerCollector)(nil)
