// Package metrics provides Prometheus metrics for the chat backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adolai"

var (
	// CacheLookups counts reply cache lookups.
	// Labels: result (hit, miss, expired)
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total reply cache lookups by result",
		},
		[]string{"result"},
	)

	// CacheEvictions counts entries removed by capacity or expiry.
	// Labels: reason (capacity, expired)
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Total reply cache evictions by reason",
		},
		[]string{"reason"},
	)

	// CacheEntries is the current number of cached replies across caches.
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Current number of cached replies",
		},
	)

	// UpstreamRequests counts calls to the chatbot API.
	// Labels: endpoint, outcome (ok, network, timeout, validation, server, rate_limited, unavailable)
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total chatbot API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	// UpstreamDuration tracks chatbot API latency.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of chatbot API requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 45},
		},
		[]string{"endpoint"},
	)

	// HistoryCorruptions counts persisted documents that failed to parse.
	// Labels: document (sessions, favorites)
	HistoryCorruptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "corrupt_documents_total",
			Help:      "Persisted history documents that failed to parse and were treated as empty",
		},
		[]string{"document"},
	)

	// HistoryWriteFailures counts swallowed history write errors.
	HistoryWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "write_failures_total",
			Help:      "History writes that failed and were dropped",
		},
	)

	// SocketConnections is the number of open /ws/chat connections.
	SocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "socket",
			Name:      "connections",
			Help:      "Open chat WebSocket connections",
		},
	)
)
