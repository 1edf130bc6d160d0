// Package metrics defines prometheus metrics to expose
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CapacityBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lingo_engine_capacity_bytes",
			Help: "Remaining admission budget in bytes",
		},
	)

	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingo_engine_request_count_total",
			Help: "Total number of submissions processed",
		},
		[]string{"status"},
	)

	RequestBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lingo_engine_request_bytes",
			Help:    "Input size of accepted submissions in bytes",
			Buckets: []float64{16, 64, 256, 1024, 4096, 16384, 65536, 262144},
		},
	)

	BatchSegments = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lingo_engine_batch_segments",
			Help:    "Number of segments per dispatched batch",
			Buckets: []float64{1, 2, 4, 8, 16, 32},
		},
	)

	BatchCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lingo_engine_batch_count_total",
			Help: "Total number of batches dispatched to workers",
		},
	)

	TranslateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lingo_engine_translate_duration_seconds",
			Help:    "Time spent inside the engine per batch in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lingo_engine_queue_depth",
			Help: "Batches currently waiting in the producer-consumer queue",
		},
	)

	ActiveWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lingo_engine_active_workers",
			Help: "Worker goroutines currently running a consume loop",
		},
	)

	CanceledRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lingo_engine_canceled_requests_total",
			Help: "Requests canceled before dispatch",
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingo_engine_cache_hits_total",
			Help: "Response cache lookups",
		},
		[]string{"result"},
	)

	ErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingo_engine_error_count",
			Help: "Error count",
		},
		[]string{"from"},
	)
)
