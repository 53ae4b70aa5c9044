// Package streaming provides timeout-protected HTTP response writing for
// the two long-lived transfers this service performs: server-sent event
// frame streams and export artifact downloads. A stalled or disconnected
// client is detected and the transfer terminated instead of holding the
// connection open indefinitely.
package streaming
