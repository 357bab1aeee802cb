package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	apiRequestsTotal        *prometheus.CounterVec
	apiLatencySeconds       *prometheus.HistogramVec
	apiErrorsTotal          *prometheus.CounterVec
	submissionsScoredTotal  *prometheus.CounterVec
	liveFeedClientsActive   prometheus.Gauge
	analyticsCacheHitsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classroom_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "classroom_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classroom_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsScoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classroom_submissions_scored_total",
			Help: "Number of quiz submissions scored and recorded.",
		}, []string{"quiz_id"})

		liveFeedClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "classroom_live_feed_clients_active",
			Help: "Number of websocket clients subscribed to live score feeds.",
		})

		analyticsCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classroom_analytics_cache_total",
			Help: "Analytics overview cache lookups partitioned by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			submissionsScoredTotal,
			liveFeedClientsActive,
			analyticsCacheHitsTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// SubmissionsScored exposes the counter for scored submissions.
func SubmissionsScored() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsScoredTotal
}

// LiveFeedClients exposes the gauge tracking websocket feed subscribers.
func LiveFeedClients() prometheus.Gauge {
	RegisterMetrics()
	return liveFeedClientsActive
}

// AnalyticsCacheLookups exposes the counter for analytics cache outcomes.
func AnalyticsCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return analyticsCacheHitsTotal
}
