package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ascii-theater/internal/logging"
	"ascii-theater/internal/preview"
	"ascii-theater/internal/streaming"

	"github.com/gorilla/mux"
)

// keepAliveInterval spaces SSE comments so proxies do not drop a paused
// stream.
const keepAliveInterval = 15 * time.Second

// frameEvent is the SSE payload for one rasterized frame.
type frameEvent struct {
	Lines        []string `json:"lines"`
	Columns      int      `json:"columns"`
	Rows         int      `json:"rows"`
	CharWidthPx  float64  `json:"charWidthPx"`
	CharHeightPx float64  `json:"charHeightPx"`
}

// StreamPreview opens a live ASCII preview over server-sent events. The
// first event names the session so the client can drive the playback and
// style endpoints; subsequent events carry frames until the source ends or
// the client disconnects.
func (h *Handlers) StreamPreview(w http.ResponseWriter, r *http.Request) {
	relPath := mux.Vars(r)["path"]
	fullPath, err := resolveVideoPath(h.config.VideoDir, relPath)
	if err != nil {
		writeJSONError(w, "invalid path", http.StatusBadRequest)
		return
	}

	if !h.slots.TryAcquire() {
		writeJSONError(w, "too many active previews, try again later", http.StatusServiceUnavailable)
		return
	}
	released := false
	defer func() {
		if !released {
			h.slots.Release()
		}
	}()

	src, err := h.open(r.Context(), fullPath)
	if err != nil {
		writeJSONError(w, "video not found or unreadable", http.StatusNotFound)
		return
	}

	// Previews run at one fixed rate for every account; the tier policy
	// only bounds the character size.
	_, cfg := h.entitlementFor(r.Context(), r)
	stream, err := src.OpenStream(r.Context(), h.config.PreviewFPS)
	if err != nil {
		logging.Error("Preview stream open failed for %s: %v", relPath, err)
		writeJSONError(w, "could not start preview", http.StatusInternalServerError)
		return
	}

	params := styleFromQuery(r)
	style := preview.Style{
		Palette:        params.palette(),
		Scheme:         params.scheme(),
		Contrast:       params.contrast(),
		CharPixel:      params.CharPixel,
		ViewportHeight: params.Viewport,
	}

	session := preview.Start(r.Context(), stream, src.Info(), h.config.PreviewFPS, cfg, style, h.slots.Release)
	released = true // the session's onClose owns the slot now

	h.sessionMu.Lock()
	h.sessions[session.ID()] = session
	h.sessionMu.Unlock()
	defer func() {
		h.sessionMu.Lock()
		delete(h.sessions, session.ID())
		h.sessionMu.Unlock()
		session.Close()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	tw := streaming.NewWriter(r.Context(), w, streaming.EventConfig())
	defer func() {
		if err := tw.Close(); err != nil {
			logging.Debug("Preview writer close: %v", err)
		}
	}()

	hello, _ := json.Marshal(map[string]string{"session": session.ID()})
	if err := tw.WriteEvent("session", hello); err != nil {
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if err := tw.WriteComment("keepalive"); err != nil {
				return
			}
		case frame, ok := <-session.Frames():
			if !ok {
				// Source exhausted; tell the client before closing.
				if err := tw.WriteEvent("end", []byte(`{}`)); err != nil &&
					!errors.Is(err, streaming.ErrClientGone) {
					logging.Debug("Preview end event: %v", err)
				}
				return
			}
			payload, err := json.Marshal(frameEvent{
				Lines:        frame.Lines(),
				Columns:      frame.Columns,
				Rows:         frame.Rows,
				CharWidthPx:  frame.CharWidthPx,
				CharHeightPx: frame.CharHeightPx,
			})
			if err != nil {
				logging.Error("Frame marshal failed: %v", err)
				continue
			}
			if err := tw.WriteEvent("frame", payload); err != nil {
				return
			}
		}
	}
}

func (h *Handlers) session(r *http.Request) (*preview.Session, bool) {
	id := mux.Vars(r)["id"]
	h.sessionMu.Lock()
	defer h.sessionMu.Unlock()
	s, ok := h.sessions[id]
	return s, ok
}

// SessionPlay resumes a paused preview.
func (h *Handlers) SessionPlay(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(r)
	if !ok {
		writeJSONError(w, "no such session", http.StatusNotFound)
		return
	}
	s.Play()
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]bool{"playing": true})
}

// SessionPause pauses a preview without tearing it down.
func (h *Handlers) SessionPause(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(r)
	if !ok {
		writeJSONError(w, "no such session", http.StatusNotFound)
		return
	}
	s.Pause()
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]bool{"playing": false})
}

// SessionStyle replaces a running session's style settings. The change
// lands atomically on the next tick.
func (h *Handlers) SessionStyle(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(r)
	if !ok {
		writeJSONError(w, "no such session", http.StatusNotFound)
		return
	}

	var params styleParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	current := s.Style()
	style := preview.Style{
		Palette:        params.palette(),
		Scheme:         params.scheme(),
		Contrast:       params.contrast(),
		CharPixel:      params.CharPixel,
		ViewportHeight: params.Viewport,
	}
	if style.CharPixel == 0 {
		style.CharPixel = current.CharPixel
	}
	if style.ViewportHeight == 0 {
		style.ViewportHeight = current.ViewportHeight
	}
	s.SetStyle(style)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": "applied"})
}
