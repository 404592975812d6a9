package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recommend",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recommend",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10},
	}, []string{"method", "path"})

	TMDBRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recommend",
		Name:      "tmdb_requests_total",
		Help:      "Total requests to the TMDb API by endpoint and result status.",
	}, []string{"endpoint", "status"})

	TMDBRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recommend",
		Name:      "tmdb_request_duration_seconds",
		Help:      "TMDb API request duration in seconds.",
		Buckets:   []float64{0.1, 0.3, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	FilterFieldsExtracted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recommend",
		Name:      "filter_fields_extracted_total",
		Help:      "How often each filter dimension was extracted from request text.",
	}, []string{"field"})

	VocabularySize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "recommend",
		Name:      "vocabulary_size",
		Help:      "Number of canonical names in the current vocabulary snapshot.",
	}, []string{"kind"})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "recommend",
		Name:      "cache_hits_total",
		Help:      "Total number of recommendation cache hits.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "recommend",
		Name:      "cache_misses_total",
		Help:      "Total number of recommendation cache misses.",
	})

	RecommendDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "recommend",
		Name:      "request_duration_seconds",
		Help:      "End-to-end recommendation duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 20},
	})

	RecommendationsReturned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "recommend",
		Name:      "recommendations_returned",
		Help:      "Number of recommendations returned per request.",
		Buckets:   []float64{0, 1, 2, 3, 4, 5},
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		TMDBRequestsTotal,
		TMDBRequestDuration,
		FilterFieldsExtracted,
		VocabularySize,
		CacheHitsTotal,
		CacheMissesTotal,
		RecommendDuration,
		RecommendationsReturned,
	)
}
