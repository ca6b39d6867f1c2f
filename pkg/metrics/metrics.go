// Package metrics provides Prometheus metrics for the Sorrel service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheRequestsTotal tracks cache lookups by key and outcome (hit, miss, error)
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorrel",
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Total number of cache lookups by outcome",
		},
		[]string{"key", "outcome"},
	)

	// CacheInvalidationsTotal tracks tag invalidations
	CacheInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorrel",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Total number of cache entries dropped by tag invalidation",
		},
		[]string{"tag"},
	)

	// ScanDuration tracks full catalog scan duration in seconds
	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sorrel",
			Subsystem: "reconcile",
			Name:      "scan_duration_seconds",
			Help:      "Duration of full catalog scans in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"scan"},
	)

	// MatchesTotal tracks variant-to-item matches by tier
	MatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorrel",
			Subsystem: "reconcile",
			Name:      "matches_total",
			Help:      "Total number of variant-to-supplier-item matches by matcher tier",
		},
		[]string{"tier"},
	)

	// MutationsTotal tracks link/create/unlink mutations by operation and status
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorrel",
			Subsystem: "reconcile",
			Name:      "mutations_total",
			Help:      "Total number of mapping mutations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// HTTPRequestsTotal tracks outbound HTTP requests to the product catalog
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorrel",
			Subsystem: "http_client",
			Name:      "requests_total",
			Help:      "Total number of outbound HTTP requests",
		},
		[]string{"method", "status_code"},
	)

	// HTTPRequestDuration tracks outbound HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sorrel",
			Subsystem: "http_client",
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound HTTP requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorrel",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// DatabaseQueryDuration tracks database query duration
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sorrel",
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// RecordCacheLookup records a cache lookup outcome
func RecordCacheLookup(key, outcome string) {
	CacheRequestsTotal.WithLabelValues(key, outcome).Inc()
}

// RecordMatch records a match by matcher tier
func RecordMatch(tier string) {
	MatchesTotal.WithLabelValues(tier).Inc()
}

// RecordMutation records a mapping mutation outcome
func RecordMutation(operation, status string) {
	MutationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordHTTPRequest records an outbound HTTP request metric
func RecordHTTPRequest(method, statusCode string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(durationSeconds)
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
}
