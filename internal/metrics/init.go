package metrics

// InitializeMetrics pre-populates expected label combinations so every
// metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, consumer := range []string{"preview", "export"} {
		FramesRasterized.WithLabelValues(consumer)
	}

	for _, outcome := range []string{"published", "paused", "skipped"} {
		PreviewTicksTotal.WithLabelValues(outcome)
	}

	for _, format := range []string{"gif", "mp4", "mov"} {
		ExportsTotal.WithLabelValues(format, "done")
		ExportsTotal.WithLabelValues(format, "error")
	}

	for _, phase := range []string{"initializing", "sampling", "encoding", "delivering"} {
		ExportPhaseDuration.WithLabelValues(phase)
	}
}
