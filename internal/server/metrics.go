package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vanban_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vanban_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	documentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vanban_documents_processed_total",
			Help: "Total number of processed documents",
		},
		[]string{"status"},
	)

	pagesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vanban_pages_processed_total",
			Help: "Total number of processed document pages",
		},
	)

	extractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vanban_extraction_duration_seconds",
			Help:    "Document extraction duration in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		},
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vanban_upload_size_bytes",
			Help:    "Size of uploaded documents in bytes",
			Buckets: []float64{64 * 1024, 256 * 1024, 1024 * 1024, 5 * 1024 * 1024, 20 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vanban_websocket_active_connections",
			Help: "Number of active websocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vanban_websocket_messages_total",
			Help: "Total number of websocket messages",
		},
		[]string{"direction"},
	)
)
