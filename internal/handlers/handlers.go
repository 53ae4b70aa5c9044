package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"ascii-theater/internal/entitlement"
	"ascii-theater/internal/export"
	"ascii-theater/internal/memory"
	"ascii-theater/internal/preview"
	"ascii-theater/internal/startup"
	"ascii-theater/internal/video"
	"ascii-theater/internal/workers"

	"github.com/gorilla/mux"
)

// accountHeader carries the caller's account key. Absent or unknown keys
// resolve to the free tier.
const accountHeader = "X-Account-Key"

// exportRunner runs one export job. *export.Orchestrator satisfies it;
// tests substitute doubles.
type exportRunner interface {
	Run(ctx context.Context, src export.FrameSource, opts export.Options) <-chan export.Job
}

// videoSource is what handlers need from an opened video: probed
// metadata, frame-accurate extraction, and paced streaming.
type videoSource interface {
	export.FrameSource
	OpenStream(ctx context.Context, fps int) (preview.FrameStream, error)
}

// sourceOpener probes and opens a video file. Tests substitute doubles so
// handler logic is exercised without ffprobe.
type sourceOpener func(ctx context.Context, path string) (videoSource, error)

// realSource adapts *video.Source to the videoSource interface.
type realSource struct {
	*video.Source
}

func (r *realSource) OpenStream(ctx context.Context, fps int) (preview.FrameStream, error) {
	return r.Source.OpenStream(ctx, fps)
}

type exportState struct {
	mu         sync.Mutex
	running    bool
	job        export.Job
	artifact   *export.Artifact
	artifactID string
	cancel     context.CancelFunc
}

// Handlers holds the dependencies shared by all HTTP handlers.
type Handlers struct {
	config  *startup.Config
	store   *entitlement.Store
	runner  exportRunner
	slots   *workers.Slots
	monitor *memory.Monitor
	open    sourceOpener
	started time.Time

	sessionMu sync.Mutex
	sessions  map[string]*preview.Session

	exports exportState
}

// New creates the handler set.
func New(config *startup.Config, store *entitlement.Store, runner exportRunner, monitor *memory.Monitor) *Handlers {
	h := &Handlers{
		config:   config,
		store:    store,
		runner:   runner,
		slots:    workers.NewSlots(workers.SessionCap()),
		monitor:  monitor,
		started:  time.Now(),
		sessions: make(map[string]*preview.Session),
	}
	h.open = func(ctx context.Context, path string) (videoSource, error) {
		src, err := video.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		src.SetSeekTimeout(config.SeekTimeout)
		return &realSource{src}, nil
	}
	return h
}

// RegisterRoutes attaches every API route to the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/videos", h.ListVideos).Methods(http.MethodGet)
	api.HandleFunc("/grid", h.GetGrid).Methods(http.MethodGet)
	api.HandleFunc("/render", h.RenderFrame).Methods(http.MethodPost)

	api.HandleFunc("/preview/{path:.*}", h.StreamPreview).Methods(http.MethodGet)
	api.HandleFunc("/session/{id}/play", h.SessionPlay).Methods(http.MethodPost)
	api.HandleFunc("/session/{id}/pause", h.SessionPause).Methods(http.MethodPost)
	api.HandleFunc("/session/{id}/style", h.SessionStyle).Methods(http.MethodPost)

	api.HandleFunc("/export", h.StartExport).Methods(http.MethodPost)
	api.HandleFunc("/export/status", h.ExportStatus).Methods(http.MethodGet)
	api.HandleFunc("/export/download/{id}", h.DownloadExport).Methods(http.MethodGet)
	api.HandleFunc("/exports", h.ExportHistory).Methods(http.MethodGet)

	api.HandleFunc("/accounts/{key}/entitlement", h.SetEntitlement).Methods(http.MethodPut)

	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	router.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
}

// CloseSessions tears down every live preview session, used at shutdown.
func (h *Handlers) CloseSessions() {
	h.sessionMu.Lock()
	sessions := make([]*preview.Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessionMu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
