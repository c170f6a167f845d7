// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Request metrics
	SuggestionRequests *prometheus.CounterVec
	SuggestionsServed  prometheus.Histogram

	// Cache metrics
	CacheLookups      *prometheus.CounterVec
	CacheStoreErrors  *prometheus.CounterVec
	CacheInvalidation prometheus.Counter

	// Regeneration metrics
	Regenerations        prometheus.Counter
	RegenerationDuration prometheus.Histogram
	CandidatesMerged     prometheus.Histogram

	// Source metrics
	SourceCalls    *prometheus.CounterVec
	SourceFailures *prometheus.CounterVec
	SourceLatency  *prometheus.HistogramVec

	// Resolver metrics
	UnresolvedCandidates prometheus.Counter

	// Exclusion metrics
	ExclusionsRecorded *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates a new Metrics instance registered on reg.
func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "account_suggestions"
	}
	factory := promauto.With(reg)

	return &Metrics{
		SuggestionRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "total",
			Help:      "Total number of suggestion requests by operation",
		}, []string{"operation"}),
		SuggestionsServed: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "suggestions_served",
			Help:      "Number of suggestions returned per request",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 40},
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of cache lookups by result (hit, miss)",
		}, []string{"result"}),
		CacheStoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "store_errors_total",
			Help:      "Total number of cache backend errors by operation",
		}, []string{"operation"}),
		CacheInvalidation: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Total number of explicit cache invalidations",
		}),

		Regenerations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregator",
			Name:      "regenerations_total",
			Help:      "Total number of full source fan-outs",
		}),
		RegenerationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregator",
			Name:      "regeneration_duration_seconds",
			Help:      "Duration of a full source fan-out and merge",
			Buckets:   prometheus.DefBuckets,
		}),
		CandidatesMerged: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregator",
			Name:      "candidates_merged",
			Help:      "Distinct candidates per regeneration before the batch cap",
			Buckets:   []float64{0, 5, 10, 20, 40, 80, 160, 320},
		}),

		SourceCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "calls_total",
			Help:      "Total number of candidate source calls",
		}, []string{"source"}),
		SourceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "failures_total",
			Help:      "Total number of candidate source failures by reason",
		}, []string{"source", "reason"}),
		SourceLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "latency_seconds",
			Help:      "Candidate source call latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),

		UnresolvedCandidates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "unresolved_candidates_total",
			Help:      "Total number of candidate ids dropped because the account did not resolve",
		}),

		ExclusionsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exclusions",
			Name:      "recorded_total",
			Help:      "Total number of exclusion requests by result (created, duplicate, failed)",
		}, []string{"result"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRequest records a public entry point call.
func RecordRequest(operation string) {
	DefaultMetrics.SuggestionRequests.WithLabelValues(operation).Inc()
}

// RecordSuggestionsServed records the size of a returned page.
func RecordSuggestionsServed(n int) {
	DefaultMetrics.SuggestionsServed.Observe(float64(n))
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	DefaultMetrics.CacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheStoreError records a cache backend failure.
func RecordCacheStoreError(operation string) {
	DefaultMetrics.CacheStoreErrors.WithLabelValues(operation).Inc()
}

// RecordCacheInvalidation records an explicit invalidation.
func RecordCacheInvalidation() {
	DefaultMetrics.CacheInvalidation.Inc()
}

// RecordRegeneration records a completed fan-out.
func RecordRegeneration(durationSeconds float64, merged int) {
	DefaultMetrics.Regenerations.Inc()
	DefaultMetrics.RegenerationDuration.Observe(durationSeconds)
	DefaultMetrics.CandidatesMerged.Observe(float64(merged))
}

// RecordSourceCall records one source call and its latency.
func RecordSourceCall(source string, seconds float64) {
	DefaultMetrics.SourceCalls.WithLabelValues(source).Inc()
	DefaultMetrics.SourceLatency.WithLabelValues(source).Observe(seconds)
}

// RecordSourceFailure records a source call that contributed nothing.
func RecordSourceFailure(source, reason string) {
	DefaultMetrics.SourceFailures.WithLabelValues(source, reason).Inc()
}

// RecordUnresolved records candidate ids dropped by the resolver.
func RecordUnresolved(n int) {
	if n > 0 {
		DefaultMetrics.UnresolvedCandidates.Add(float64(n))
	}
}

// RecordExclusion records an exclusion request.
func RecordExclusion(created bool) {
	result := "duplicate"
	if created {
		result = "created"
	}
	DefaultMetrics.ExclusionsRecorded.WithLabelValues(result).Inc()
}

// RecordExclusionFailure records an exclusion that could not be persisted.
func RecordExclusionFailure() {
	DefaultMetrics.ExclusionsRecorded.WithLabelValues("failed").Inc()
}
