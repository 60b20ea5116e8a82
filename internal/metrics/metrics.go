// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explorer_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// DatasetFetches counts dataset fetch attempts by source and outcome.
	DatasetFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_dataset_fetches_total",
			Help: "Total number of dataset fetch attempts",
		},
		[]string{"source", "status"},
	)
	// DatasetFetchDuration is the latency of dataset fetches.
	DatasetFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explorer_dataset_fetch_duration_seconds",
			Help:    "Dataset fetch latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)
	// DatasetRows is the size of the cached dataset.
	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "explorer_dataset_rows",
			Help: "Number of rows in the cached dataset",
		},
		[]string{"source"},
	)
	// QueriesTotal counts data queries by outcome (ok, invalid, error).
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_queries_total",
			Help: "Total number of data queries",
		},
		[]string{"status"},
	)
)

// ObserveFetch records one completed dataset fetch. Its signature matches
// dataset.FetchObserver.
func ObserveFetch(source string, elapsed time.Duration, rows int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DatasetFetches.WithLabelValues(source, status).Inc()
	DatasetFetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if err == nil {
		DatasetRows.WithLabelValues(source).Set(float64(rows))
	}
}

// ObserveQuery records one data query outcome.
func ObserveQuery(status string) {
	QueriesTotal.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
