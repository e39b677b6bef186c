package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	datasetLoadSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataset_load_seconds",
			Help:    "Time to fetch and decode the property and activity collections.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"source", "outcome"},
	)

	datasetRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dataset_records",
			Help: "Records in the loaded dataset by collection.",
		},
		[]string{"collection"},
	)

	markerRefreshSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marker_refresh_seconds",
			Help:    "Duration of a full marker layer rebuild.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
	)

	markersRendered = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "markers_rendered",
			Help:    "Markers placed by a refresh.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		},
	)

	buttonClicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filter_button_clicks_total",
			Help: "Filter button clicks by dimension.",
		},
		[]string{"dimension"},
	)

	storeOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_op_total",
			Help: "Redis store operations by outcome.",
		},
		[]string{"op", "outcome"},
	)

	storeOpSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Latency of redis operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op"},
	)

	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Page sessions currently held in memory.",
		},
	)

	upstreamLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"upstream"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveDatasetLoad(source string, err error, durationSeconds float64) {
	datasetLoadSeconds.WithLabelValues(source, outcome(err)).Observe(durationSeconds)
}

func SetDatasetRecords(properties, activities int) {
	datasetRecords.WithLabelValues("properties").Set(float64(properties))
	datasetRecords.WithLabelValues("activities").Set(float64(activities))
}

func ObserveRefresh(rendered int, durationSeconds float64) {
	markerRefreshSeconds.Observe(durationSeconds)
	markersRendered.Observe(float64(rendered))
}

func IncButtonClick(dimension string) {
	buttonClicksTotal.WithLabelValues(dimension).Inc()
}

func ObserveStoreOp(op string, err error, durationSeconds float64) {
	storeOps.WithLabelValues(op, outcome(err)).Inc()
	storeOpSeconds.WithLabelValues(op).Observe(durationSeconds)
}

func SetSessionsActive(n int) {
	sessionsActive.Set(float64(n))
}

func ObserveUpstreamLatency(upstream string, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream).Observe(durationSeconds)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
