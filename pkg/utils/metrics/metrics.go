package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation engine
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodrec_recommend_requests_total",
			Help: "Total number of recommendation requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodrec_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	RecommendFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodrec_recommend_popularity_fallbacks_total",
			Help: "Total number of user recommendations served by the popularity fallback",
		},
	)

	// Embedding provider
	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodrec_embedding_requests_total",
			Help: "Total number of embedding provider calls by outcome",
		},
		[]string{"outcome"},
	)

	EmbeddingTexts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodrec_embedding_texts_total",
			Help: "Total number of texts sent to the embedding provider",
		},
	)

	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodrec_embedding_cache_hits_total",
			Help: "Total number of embedding cache hits",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodrec_embedding_cache_misses_total",
			Help: "Total number of embedding cache misses",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "foodrec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Seeding
	SeededItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodrec_seeded_items_total",
			Help: "Total number of generated seed records by kind",
		},
		[]string{"kind"},
	)

	// HTTP API
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodrec_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// ObserveRecommend records one recommendation request
func ObserveRecommend(mode string, start time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	RecommendRequests.WithLabelValues(mode, outcome).Inc()
	RecommendDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

// ObserveEmbedding records one provider call covering n texts
func ObserveEmbedding(n int, err error) {
	if err != nil {
		EmbeddingRequests.WithLabelValues(OutcomeError).Inc()
		return
	}
	EmbeddingRequests.WithLabelValues(OutcomeSuccess).Inc()
	EmbeddingTexts.Add(float64(n))
}

// ObserveAPIRequest records one HTTP request
func ObserveAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
