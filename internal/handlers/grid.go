package handlers

import (
	"net/http"

	"ascii-theater/internal/grid"
	"ascii-theater/internal/logging"
)

// GetGrid resolves the character grid for a source video at the requested
// character size and viewport, clamped to the caller's tier.
func (h *Handlers) GetGrid(w http.ResponseWriter, r *http.Request) {
	relPath := r.URL.Query().Get("path")
	if relPath == "" {
		writeJSONError(w, "path parameter is required", http.StatusBadRequest)
		return
	}

	fullPath, err := resolveVideoPath(h.config.VideoDir, relPath)
	if err != nil {
		writeJSONError(w, "invalid path", http.StatusBadRequest)
		return
	}

	src, err := h.open(r.Context(), fullPath)
	if err != nil {
		logging.Warn("Grid request for %s failed: %v", relPath, err)
		writeJSONError(w, "video not found or unreadable", http.StatusNotFound)
		return
	}
	info := src.Info()

	_, cfg := h.entitlementFor(r.Context(), r)
	charPixel := cfg.ClampCharPixel(queryFloat(r, "charPixel", 10))
	viewport := queryInt(r, "viewportHeight", info.Height)

	geom := grid.Resolve(info.Width, info.Height, viewport, charPixel)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"geometry":  geom,
		"charPixel": charPixel,
		"video": map[string]interface{}{
			"width":    info.Width,
			"height":   info.Height,
			"duration": info.Duration,
		},
	})
}
