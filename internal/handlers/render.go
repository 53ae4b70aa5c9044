package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ascii-theater/internal/ascii"
	"ascii-theater/internal/grid"
	"ascii-theater/internal/logging"
	"ascii-theater/internal/metrics"
	"ascii-theater/internal/video"
)

// renderRequest asks for one frame at one instant.
type renderRequest struct {
	Path      string  `json:"path"`
	Timestamp float64 `json:"timestamp"`
	styleParams
}

// renderResponse carries the rasterized frame as text lines plus the
// geometry the client needs to lay it out.
type renderResponse struct {
	Lines        []string `json:"lines"`
	Columns      int      `json:"columns"`
	Rows         int      `json:"rows"`
	CharWidthPx  float64  `json:"charWidthPx"`
	CharHeightPx float64  `json:"charHeightPx"`
	Timestamp    float64  `json:"timestamp"`
}

// RenderFrame extracts the frame nearest the requested instant and
// rasterizes it once. Used for scrubbing and thumbnails.
func (h *Handlers) RenderFrame(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
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

	src, err := h.open(r.Context(), fullPath)
	if err != nil {
		writeJSONError(w, "video not found or unreadable", http.StatusNotFound)
		return
	}
	info := src.Info()

	frame, err := src.FrameAt(r.Context(), req.Timestamp)
	if err != nil {
		if errors.Is(err, video.ErrSeekFailed) {
			writeJSONError(w, "could not extract a frame at that instant", http.StatusUnprocessableEntity)
			return
		}
		logging.Error("Frame extraction failed for %s@%.2f: %v", req.Path, req.Timestamp, err)
		writeJSONError(w, "frame extraction failed", http.StatusInternalServerError)
		return
	}

	_, cfg := h.entitlementFor(r.Context(), r)
	charPixel := cfg.ClampCharPixel(req.CharPixel)
	viewport := req.Viewport
	if viewport <= 0 {
		viewport = info.Height
	}
	geom := grid.Resolve(info.Width, info.Height, viewport, charPixel)

	surface := ascii.NewSurface()
	start := time.Now()
	out, err := surface.Rasterize(frame, geom, ascii.Options{
		Palette:  req.palette(),
		Scheme:   req.scheme(),
		Contrast: req.contrast(),
	})
	if err != nil {
		writeJSONError(w, "rasterization failed", http.StatusInternalServerError)
		return
	}
	metrics.RasterizeDuration.Observe(time.Since(start).Seconds())
	metrics.FramesRasterized.WithLabelValues("preview").Inc()

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, renderResponse{
		Lines:        out.Lines(),
		Columns:      out.Columns,
		Rows:         out.Rows,
		CharWidthPx:  out.CharWidthPx,
		CharHeightPx: out.CharHeightPx,
		Timestamp:    req.Timestamp,
	})
}
