// Package metrics exposes Prometheus collectors for the navigator service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	searchesTotal              *prometheus.CounterVec
	searchFallbacksTotal       *prometheus.CounterVec
	stepsTotal                 *prometheus.CounterVec
	jobsTotal                  *prometheus.CounterVec
	jobDurationSeconds         prometheus.Histogram
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call
// multiple times.
func Init() {
	once.Do(func() {
		searchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_searches_total",
				Help: "Total provider search calls, labeled by provider and status.",
			},
			[]string{"provider", "status"},
		)

		searchFallbacksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_search_fallbacks_total",
				Help: "Total fallback scans, labeled by the provider tried.",
			},
			[]string{"provider"},
		)

		stepsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_steps_total",
				Help: "Total automation steps executed, labeled by action and result.",
			},
			[]string{"action", "result"},
		)

		jobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navigator_jobs_total",
				Help: "Total jobs processed, labeled by status.",
			},
			[]string{"status"},
		)

		jobDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "navigator_job_duration_seconds",
				Help:    "Histogram of end-to-end job durations.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler exposing the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSearch increments the search counter.
func ObserveSearch(provider string, status string) {
	Init()
	searchesTotal.WithLabelValues(provider, status).Inc()
}

// ObserveFallback increments the fallback counter for a provider.
func ObserveFallback(provider string) {
	Init()
	searchFallbacksTotal.WithLabelValues(provider).Inc()
}

// ObserveStep increments the step counter.
func ObserveStep(action string, result string) {
	Init()
	stepsTotal.WithLabelValues(action, result).Inc()
}

// ObserveJob records a finished job and its duration.
func ObserveJob(status string, duration time.Duration) {
	Init()
	jobsTotal.WithLabelValues(status).Inc()
	jobDurationSeconds.Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method string, route string, code string, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, code).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
