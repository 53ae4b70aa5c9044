// Package metrics defines the Prometheus metrics exported by ascii-theater.
//
// Metrics cover the HTTP surface, rasterization, preview sessions, export
// jobs, and encoder invocations. All metrics are registered via promauto at
// package initialization and served on the dedicated metrics port.
package metrics
