// Package metrics exposes Prometheus collectors for the matching engine and
// its HTTP surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "swapyard"

var (
	// Participants is the number of registered participants.
	Participants = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "graph",
		Name:      "participants",
		Help:      "Registered participants",
	})

	// Edges is the number of directed edges after the last rebuild.
	Edges = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "graph",
		Name:      "edges",
		Help:      "Directed trade edges after the last rebuild",
	})

	// RebuildDuration observes full edge rebuilds.
	RebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "graph",
		Name:      "rebuild_duration_seconds",
		Help:      "Duration of full edge rebuilds",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
	})

	// CyclesFound is the number of distinct cycles in the last search, by
	// maximum length.
	CyclesFound = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "graph",
		Name:      "cycles_found",
		Help:      "Distinct trade cycles found by the last search",
	}, []string{"max_length"})

	// TradesExecuted counts hand-overs settled by cycle execution.
	TradesExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "matching",
		Name:      "trades_executed_total",
		Help:      "Items handed over by executed cycles",
	})

	// Rounds counts ExecuteAll rounds by trigger and outcome.
	Rounds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "matching",
		Name:      "rounds_total",
		Help:      "Matching rounds run",
	}, []string{"trigger", "status"})

	// HTTPRequests counts API requests.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "HTTP requests processed",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes API request latency.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests",
	}, []string{"method", "route"})
)
