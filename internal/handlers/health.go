package handlers

import (
	"net/http"
	"runtime"
	"time"

	"ascii-theater/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	Uptime          string `json:"uptime"`
	ExportsEnabled  bool   `json:"exportsEnabled"`
	ExportRunning   bool   `json:"exportRunning"`
	PreviewsActive  int    `json:"previewsActive"`
	PreviewCapacity int    `json:"previewCapacity"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.exports.mu.Lock()
	exportRunning := h.exports.running
	h.exports.mu.Unlock()

	response := HealthResponse{
		Status:          statusHealthy,
		Version:         startup.Version,
		Uptime:          time.Since(h.started).Round(time.Second).String(),
		ExportsEnabled:  h.config.ExportsEnabled,
		ExportRunning:   exportRunning,
		PreviewsActive:  h.slots.InUse(),
		PreviewCapacity: h.slots.Capacity(),
		GoVersion:       runtime.Version(),
		NumCPU:          runtime.NumCPU(),
		NumGoroutine:    runtime.NumGoroutine(),
	}

	if !h.config.ExportsEnabled {
		response.Status = statusDegraded
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 once startup wiring is complete. The handler
// set only exists after configuration and the store are up, so readiness
// here is unconditional.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, map[string]string{
		"status": "ready",
	})
}
