package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ascii-theater/internal/encoder"
	"ascii-theater/internal/entitlement"
	"ascii-theater/internal/export"
	"ascii-theater/internal/handlers"
	"ascii-theater/internal/logging"
	"ascii-theater/internal/memory"
	"ascii-theater/internal/metrics"
	"ascii-theater/internal/middleware"
	"ascii-theater/internal/startup"
	"ascii-theater/internal/video"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	// Initialize entitlement store
	dbStart := time.Now()
	store, err := entitlement.New(context.Background(), config.DatabasePath)
	if err != nil {
		logging.Fatal("Failed to initialize entitlement store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn("Store close error: %v", err)
		}
	}()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Initialize the frame decoder's fast path if libvips is present
	video.InitVips()
	defer video.ShutdownVips()

	// Initialize encoder and export orchestrator
	startup.LogEncoderInit(config.ExportsEnabled)
	orchestrator := export.New(encoder.NewFFmpeg(config.EncoderDir))

	// Memory monitor gates new exports under pressure
	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()
	defer monitor.Stop()

	// Initialize handlers and routes
	h := handlers.New(config, store, orchestrator, monitor)
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)

	srv := &http.Server{
		Addr:    ":" + config.Port,
		Handler: handler,
		// WriteTimeout stays 0: SSE previews and artifact downloads are
		// long; the streaming writer enforces its own timeouts.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, h, monitor)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func handleShutdown(srv, metricsSrv *http.Server, h *handlers.Handlers, monitor *memory.Monitor) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Closing preview sessions")
	h.CloseSessions()
	startup.LogShutdownStepComplete("Preview sessions closed")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
