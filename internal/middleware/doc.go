// Package middleware provides HTTP middleware for the ascii-theater
// service.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with path normalization
//   - Configurable filtering for health checks and scrape endpoints
package middleware
