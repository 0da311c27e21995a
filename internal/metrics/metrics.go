// Package metrics provides Prometheus metrics for the CVE monitor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchCyclesTotal counts fetch cycles by outcome (reported, empty, failed).
	FetchCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cvemonitor",
			Name:      "fetch_cycles_total",
			Help:      "Total number of feed fetch cycles",
		},
		[]string{"outcome"},
	)

	// FetchErrorsTotal counts failed fetch cycles by stage.
	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cvemonitor",
			Name:      "fetch_errors_total",
			Help:      "Total number of fetch cycle failures",
		},
		[]string{"stage"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cvemonitor",
			Name:      "fetch_cycle_duration_seconds",
			Help:      "Duration of fetch cycles in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	EntriesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cvemonitor",
			Name:      "entries_fetched_total",
			Help:      "Total number of feed entries written to reports",
		},
	)

	// PullCount mirrors the persisted pull counter.
	PullCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cvemonitor",
			Name:      "pull_count",
			Help:      "Sequence number of the most recent report",
		},
	)

	// DigestsTotal counts digest cycles by outcome (sent, skipped, failed).
	DigestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cvemonitor",
			Name:      "digests_total",
			Help:      "Total number of daily digest cycles",
		},
		[]string{"outcome"},
	)
)
