// Package metrics provides Prometheus metrics for the Wikidot MCP server.
// It tracks tool calls, upstream request outcomes, retries, and page-ID
// resolution paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "wikidot_mcp"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing requests
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// UpstreamLatency measures single-attempt latency against wikidot and the GraphQL mirror
	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "upstream_latency_seconds",
		Help:      "Upstream HTTP attempt latency by operation",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// UpstreamRequestsTotal counts upstream HTTP attempts
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "upstream_requests_total",
		Help:      "Upstream HTTP attempts by operation and status",
	}, []string{"operation", "status"})

	// UpstreamErrors counts failed attempts by error kind
	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "upstream_errors_total",
		Help:      "Upstream failures by operation and error kind",
	}, []string{"operation", "kind"})

	// Retries counts backoff sleeps taken by the retry engine
	Retries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "retries_total",
		Help:      "Retries by operation",
	}, []string{"operation"})

	// ThrottleWaits counts extra delays inserted after GraphQL throttling replies
	ThrottleWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "graphql_throttle_waits_total",
		Help:      "Extra waits inserted after the GraphQL mirror reported throttling",
	})

	// AuthFailures counts authentication failures
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_failures_total",
		Help:      "Authentication failure count by reason",
	}, []string{"reason"})

	// PageIDResolutions counts how page IDs were resolved
	PageIDResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "page_id_resolutions_total",
		Help:      "Page-ID resolutions by source (cache, graphql, source, unresolved)",
	}, []string{"source"})

	// CacheHits counts cache hits
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_hits_total",
		Help:      "Total cache hit count",
	})

	// CacheMisses counts cache misses
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_misses_total",
		Help:      "Total cache miss count",
	})

	// RateLimitWaits counts requests that had to wait for the concurrency semaphore
	RateLimitWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rate_limit_waits_total",
		Help:      "Requests that waited for rate limiter semaphore",
	})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})

	// EditOperations counts write operations by type
	EditOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "edit_operations_total",
		Help:      "Edit operations by type and status",
	}, []string{"operation", "status"})
)

// RecordRequest records a completed request with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	RequestsTotal.WithLabelValues(tool, statusLabel(success)).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordUpstream records a single upstream HTTP attempt
func RecordUpstream(operation string, duration float64, success bool, errorKind string) {
	UpstreamRequestsTotal.WithLabelValues(operation, statusLabel(success)).Inc()
	UpstreamLatency.WithLabelValues(operation).Observe(duration)
	if errorKind != "" {
		UpstreamErrors.WithLabelValues(operation, errorKind).Inc()
	}
}

// RecordRetry records a backoff sleep for operation
func RecordRetry(operation string) {
	Retries.WithLabelValues(operation).Inc()
}

// RecordPageIDResolution records which path resolved a page ID
func RecordPageIDResolution(source string) {
	PageIDResolutions.WithLabelValues(source).Inc()
}

// RecordEdit records a page write operation
func RecordEdit(operation string, success bool) {
	EditOperations.WithLabelValues(operation, statusLabel(success)).Inc()
}

// RecordCacheAccess records a cache hit or miss
func RecordCacheAccess(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
