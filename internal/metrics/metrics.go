// Package metrics exposes Prometheus instrumentation for the classifier.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finsift/finsift/internal/models"
)

var (
	// ClassificationsTotal counts classifications by resolution method.
	ClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsift_classifications_total",
		Help: "Number of classifications performed, by method.",
	}, []string{"method"})

	// CacheRequestsTotal counts result-cache lookups by outcome.
	CacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsift_cache_requests_total",
		Help: "Number of result cache lookups, by outcome (hit, miss, error).",
	}, []string{"result"})

	// ClassifyDuration observes end-to-end classification latency.
	ClassifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "finsift_classify_duration_seconds",
		Help:    "End-to-end latency of classify requests.",
		Buckets: prometheus.DefBuckets,
	})

	// CatalogReloadsTotal counts catalog reloads by outcome.
	CatalogReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsift_catalog_reloads_total",
		Help: "Number of rule catalog reload attempts, by outcome (ok, error).",
	}, []string{"result"})
)

// ObserveClassification records a completed classification.
func ObserveClassification(method models.Method, seconds float64) {
	ClassificationsTotal.WithLabelValues(string(method)).Inc()
	ClassifyDuration.Observe(seconds)
}

// RecordCacheResult records a cache lookup outcome.
func RecordCacheResult(result string) {
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

// RecordCatalogReload records a catalog reload outcome.
func RecordCatalogReload(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	CatalogReloadsTotal.WithLabelValues(result).Inc()
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
