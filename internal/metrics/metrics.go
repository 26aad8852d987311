// Package metrics holds the Prometheus instruments exported by `skinrec serve`.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinrec_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skinrec_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinrec_recommendations_total",
			Help: "Recommendation calls by result tier (primary, fallback, none)",
		},
		[]string{"tier"},
	)

	CatalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skinrec_catalog_products",
			Help: "Products in the catalog snapshot being served",
		},
	)

	CatalogReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skinrec_catalog_reloads_total",
			Help: "Catalog reload attempts by result",
		},
		[]string{"result"},
	)
)

// RecordHTTPRequest records one served request. route should be the
// router pattern, not the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRecommendation counts one engine call.
func RecordRecommendation(tier string) {
	RecommendationsTotal.WithLabelValues(tier).Inc()
}

// SetCatalogProducts updates the served catalog size.
func SetCatalogProducts(n int) {
	CatalogProducts.Set(float64(n))
}

// RecordCatalogReload counts a reload attempt and, on success, updates the
// catalog size.
func RecordCatalogReload(products int, err error) {
	if err != nil {
		CatalogReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	CatalogReloadsTotal.WithLabelValues("ok").Inc()
	SetCatalogProducts(products)
}
