package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ascii_theater_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ascii_theater_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ascii_theater_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Rasterizer metrics
var (
	FramesRasterized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ascii_theater_frames_rasterized_total",
			Help: "Total number of frames rasterized to ASCII",
		},
		[]string{"consumer"}, // "preview" or "export"
	)

	RasterizeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ascii_theater_rasterize_duration_seconds",
			Help:    "Single-frame rasterization duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

// Preview metrics
var (
	PreviewSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ascii_theater_preview_sessions_active",
			Help: "Number of preview loops currently running",
		},
	)

	PreviewTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ascii_theater_preview_ticks_total",
			Help: "Total preview loop ticks by outcome",
		},
		[]string{"outcome"}, // "published", "paused", "skipped"
	)
)

// Export metrics
var (
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ascii_theater_exports_total",
			Help: "Total export jobs by format and terminal status",
		},
		[]string{"format", "status"}, // status: "done" or "error"
	)

	ExportPhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ascii_theater_export_phase_duration_seconds",
			Help:    "Duration of each export phase in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"phase"},
	)

	ExportFramesSampled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ascii_theater_export_frames_sampled_total",
			Help: "Total frames sampled and submitted across export jobs",
		},
	)

	ExportFramesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ascii_theater_export_frames_skipped_total",
			Help: "Total sampling instants skipped due to capture failures",
		},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ascii_theater_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ascii_theater_memory_paused",
			Help: "Whether new work is paused due to memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ascii_theater_memory_gc_pauses_total",
			Help: "Total forced GC cycles triggered by memory pressure",
		},
	)
)

// Encoder metrics
var (
	EncoderRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ascii_theater_encoder_run_duration_seconds",
			Help:    "Duration of external encoder invocations in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	SeekFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ascii_theater_seek_fallbacks_total",
			Help: "Total frame seeks that hit the timeout and fell back to keyframe seeking",
		},
	)
)
