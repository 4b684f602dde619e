package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orgdirectory_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// DirectoryOperations counts directory operations by name (list|search|seed) and result (success|invalid|error).
	DirectoryOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgdirectory_directory_operations_total",
			Help: "Total number of directory operations",
		},
		[]string{"operation", "result"},
	)

	// SeededOrganizations counts synthetic organizations committed to storage.
	SeededOrganizations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orgdirectory_seeded_organizations_total",
			Help: "Total number of generated organizations inserted",
		},
	)

	// RateLimitedRequests counts requests rejected by the rate limiter per route.
	RateLimitedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgdirectory_rate_limited_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"route"},
	)

	// StoredOrganizations reports the row count last observed by the maintenance job.
	StoredOrganizations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orgdirectory_organizations",
			Help: "Number of organizations currently stored",
		},
	)

	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgdirectory_maintenance_runs_total",
			Help: "Total number of maintenance job runs",
		},
		[]string{"job", "result"},
	)
)
