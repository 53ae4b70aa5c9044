package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ascii-theater/internal/encoder"
	"ascii-theater/internal/entitlement"
	"ascii-theater/internal/export"
	"ascii-theater/internal/logging"
	"ascii-theater/internal/streaming"
	"ascii-theater/internal/tier"

	"github.com/gorilla/mux"
)

// exportRequest starts one export job.
type exportRequest struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	styleParams
}

// StartExport launches an export job. One job runs at a time; a second
// request while one is active is rejected with 409 and the running job's
// identifier.
func (h *Handlers) StartExport(w http.ResponseWriter, r *http.Request) {
	if !h.config.ExportsEnabled {
		writeJSONError(w, "exports are disabled on this instance", http.StatusServiceUnavailable)
		return
	}
	if h.monitor != nil && h.monitor.Paused() {
		writeJSONError(w, "server is under memory pressure, try again later", http.StatusServiceUnavailable)
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		writeJSONError(w, "path is required", http.StatusBadRequest)
		return
	}

	fullPath, err := resolveVideoPath(h.config.VideoDir, req.Path)
	if err != nil {
		writeJSONError(w, "invalid path", http.StatusBadRequest)
		return
	}

	accountKey, cfg := h.entitlementFor(r.Context(), r)
	format := encoder.ParseFormat(req.Format)

	src, err := h.open(r.Context(), fullPath)
	if err != nil {
		writeJSONError(w, "video not found or unreadable", http.StatusNotFound)
		return
	}

	opts := export.Options{
		Format:         format,
		Tier:           cfg,
		Palette:        req.palette(),
		Scheme:         req.scheme(),
		Contrast:       req.contrast(),
		CharPixel:      req.CharPixel,
		ViewportHeight: req.Viewport,
	}

	h.exports.mu.Lock()
	if h.exports.running {
		id := h.exports.job.ID
		h.exports.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		writeJSON(w, map[string]string{
			"error": "an export is already in progress",
			"id":    id,
		})
		return
	}

	// The job outlives the request; it gets its own context.
	jobCtx, cancel := context.WithCancel(context.Background())
	h.exports.running = true
	h.exports.cancel = cancel
	h.exports.artifact = nil
	h.exports.artifactID = ""
	updates := h.runner.Run(jobCtx, src, opts)

	// Wait for the first snapshot so the response carries the job ID.
	first, ok := <-updates
	if ok {
		h.exports.job = first
	}
	h.exports.mu.Unlock()

	go h.consumeExport(updates, accountKey, string(format))

	logging.Info("Export %s started: %s -> %s", first.ID, req.Path, format)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, first)
}

// consumeExport tracks job snapshots until the channel closes, retaining
// the artifact for download and recording the outcome.
func (h *Handlers) consumeExport(updates <-chan export.Job, accountKey string, format string) {
	for job := range updates {
		h.exports.mu.Lock()
		h.exports.job = job
		if job.Status == export.StatusDone && job.Artifact != nil {
			h.exports.artifact = job.Artifact
			h.exports.artifactID = job.ID
		}
		h.exports.mu.Unlock()

		if job.Status.Terminal() && h.store != nil && accountKey != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := h.store.RecordExport(ctx, accountKey, format, string(job.Status), job.Frames); err != nil {
				logging.Warn("Failed to record export history: %v", err)
			}
			cancel()
		}
	}

	h.exports.mu.Lock()
	h.exports.running = false
	if h.exports.cancel != nil {
		h.exports.cancel()
		h.exports.cancel = nil
	}
	h.exports.mu.Unlock()
}

// ExportStatus reports the current job snapshot. With no job running it
// reports idle.
func (h *Handlers) ExportStatus(w http.ResponseWriter, _ *http.Request) {
	h.exports.mu.Lock()
	job := h.exports.job
	hasArtifact := h.exports.artifact != nil
	h.exports.mu.Unlock()

	if job.ID == "" {
		job.Status = export.StatusIdle
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"job":          job,
		"downloadable": hasArtifact,
	})
}

// DownloadExport streams the finished artifact for the given job.
func (h *Handlers) DownloadExport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.exports.mu.Lock()
	artifact := h.exports.artifact
	artifactID := h.exports.artifactID
	h.exports.mu.Unlock()

	if artifact == nil || artifactID != id {
		writeJSONError(w, "no downloadable export with that id", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", artifact.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(artifact.Data)))

	tw := streaming.NewWriter(r.Context(), w, streaming.DefaultConfig())
	defer func() {
		if err := tw.Close(); err != nil {
			logging.Debug("Download writer close: %v", err)
		}
	}()

	if _, err := tw.Write(artifact.Data); err != nil {
		logging.Warn("Export download interrupted: %v", err)
	}
}

// ExportHistory lists the caller's recent exports.
func (h *Handlers) ExportHistory(w http.ResponseWriter, r *http.Request) {
	accountKey := r.Header.Get(accountHeader)
	if accountKey == "" {
		writeJSONError(w, "account key is required", http.StatusUnauthorized)
		return
	}
	if h.store == nil {
		writeJSONError(w, "history is unavailable", http.StatusServiceUnavailable)
		return
	}

	records, err := h.store.History(r.Context(), accountKey)
	if err != nil {
		logging.Error("Export history query failed: %v", err)
		writeJSONError(w, "failed to load export history", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []entitlement.ExportRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"exports": records,
		"count":   len(records),
	})
}

// entitlementRequest sets an account's tier.
type entitlementRequest struct {
	Tier string `json:"tier"`
}

// SetEntitlement grants or revokes the premium tier for an account.
func (h *Handlers) SetEntitlement(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSONError(w, "entitlements are unavailable", http.StatusServiceUnavailable)
		return
	}
	key := mux.Vars(r)["key"]

	var req entitlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var e tier.Entitlement
	switch tier.Entitlement(req.Tier) {
	case tier.Premium:
		e = tier.Premium
	case tier.Free:
		e = tier.Free
	default:
		writeJSONError(w, "unknown tier", http.StatusBadRequest)
		return
	}

	if err := h.store.Grant(r.Context(), key, e); err != nil {
		logging.Error("Entitlement grant failed: %v", err)
		writeJSONError(w, "failed to update entitlement", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"account": key, "tier": string(e)})
}
