// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelfwise_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shelfwise_api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// Library backend metrics
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelfwise_backend_request_duration_seconds",
			Help:    "Duration of library backend requests in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"resource"},
	)

	BackendRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_backend_request_errors_total",
			Help: "Total number of failed library backend requests",
		},
		[]string{"resource", "error_type"}, // unavailable, not_found, malformed
	)

	// Recommendation metrics
	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_recommendations_generated_total",
			Help: "Total number of recommendation lists produced",
		},
		[]string{"strategy"}, // content, collaborative, popularity, hybrid, similar
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelfwise_recommendation_duration_seconds",
			Help:    "Time spent computing recommendations (excluding backend fetches)",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"strategy"},
	)

	RecommendationsDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_recommendations_degraded_total",
			Help: "Recommendation requests answered with an empty list because the backend was unavailable",
		},
		[]string{"strategy"},
	)

	VectorizerCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shelfwise_vectorizer_cache_hits_total",
			Help: "Total number of TF-IDF vectorizer cache hits",
		},
	)

	VectorizerCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shelfwise_vectorizer_cache_misses_total",
			Help: "Total number of TF-IDF vectorizer cache misses",
		},
	)

	// Anomaly / risk metrics
	AnomalyRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_anomaly_runs_total",
			Help: "Total number of anomaly detection runs",
		},
		[]string{"outcome"}, // ok, insufficient_data, degraded, error
	)

	AnomalyPopulation = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shelfwise_anomaly_population_size",
			Help: "Number of users scored in the last anomaly detection run",
		},
	)

	AnomaliesDetected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shelfwise_anomalies_detected",
			Help: "Number of users flagged in the last anomaly detection run",
		},
	)

	AnomalyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shelfwise_anomaly_duration_seconds",
			Help:    "Time spent fitting and scoring the isolation forest",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	RiskAssessments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_risk_assessments_total",
			Help: "Total number of risk assessments by resulting level",
		},
		[]string{"level"},
	)

	// OCR / book info metrics
	OCRRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_ocr_requests_total",
			Help: "Total number of ISBN extraction requests",
		},
		[]string{"source", "result"}, // source: text, image; result: found, not_found, error
	)

	BookInfoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_book_info_lookups_total",
			Help: "Total number of book metadata lookups",
		},
		[]string{"result"}, // hit, found, not_found, error
	)

	// Event metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_events_published_total",
			Help: "Total number of events published",
		},
		[]string{"topic"},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelfwise_event_publish_errors_total",
			Help: "Total number of failed event publications",
		},
		[]string{"topic"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBackendRequest records a library backend call. errorType is empty on success.
func RecordBackendRequest(resource string, duration time.Duration, errorType string) {
	BackendRequestDuration.WithLabelValues(resource).Observe(duration.Seconds())
	if errorType != "" {
		BackendRequestErrors.WithLabelValues(resource, errorType).Inc()
	}
}

// RecordBackendError counts a backend failure detected after the response was read.
func RecordBackendError(resource, errorType string) {
	BackendRequestErrors.WithLabelValues(resource, errorType).Inc()
}

// RecordRecommendation records one generated recommendation list.
func RecordRecommendation(strategy string, duration time.Duration) {
	RecommendationsGenerated.WithLabelValues(strategy).Inc()
	RecommendationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordRecommendationDegraded counts a request answered empty due to backend failure.
func RecordRecommendationDegraded(strategy string) {
	RecommendationsDegraded.WithLabelValues(strategy).Inc()
}

// RecordVectorizerCache records a vectorizer cache lookup.
func RecordVectorizerCache(hit bool) {
	if hit {
		VectorizerCacheHits.Inc()
	} else {
		VectorizerCacheMisses.Inc()
	}
}

// RecordAnomalyRun records the outcome of an anomaly detection run.
func RecordAnomalyRun(outcome string, population, flagged int, duration time.Duration) {
	AnomalyRuns.WithLabelValues(outcome).Inc()
	if outcome != "ok" {
		return
	}
	AnomalyPopulation.Set(float64(population))
	AnomaliesDetected.Set(float64(flagged))
	AnomalyDuration.Observe(duration.Seconds())
}

// RecordRiskAssessment records a computed risk level.
func RecordRiskAssessment(level string) {
	RiskAssessments.WithLabelValues(level).Inc()
}

// RecordOCRRequest records an ISBN extraction attempt.
func RecordOCRRequest(source, result string) {
	OCRRequests.WithLabelValues(source, result).Inc()
}

// RecordBookInfoLookup records a book metadata lookup.
func RecordBookInfoLookup(result string) {
	BookInfoLookups.WithLabelValues(result).Inc()
}

// RecordEventPublish records an event publication attempt.
func RecordEventPublish(topic string, err error) {
	if err != nil {
		EventPublishErrors.WithLabelValues(topic).Inc()
		return
	}
	EventsPublished.WithLabelValues(topic).Inc()
}
