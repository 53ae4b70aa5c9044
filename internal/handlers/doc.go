// Package handlers implements the HTTP API: library listing, grid
// geometry, single-frame rendering, live preview streaming over
// server-sent events, and the export pipeline endpoints.
package handlers
