// Package main provides the entry point for the ASCII Theater server.
//
// ASCII Theater is a self-hosted service that turns video files into
// character art. It serves live ASCII previews over Server-Sent Events,
// renders single frames at arbitrary timestamps, and exports finished
// clips as MP4, GIF, or MOV through an external FFmpeg encoder.
//
// # Application Lifecycle
//
// The application follows a structured initialization sequence:
//
//  1. Configuration Loading: Reads environment variables and validates directories
//  2. Entitlement Store: Opens the SQLite accounts and export-history database
//  3. Component Initialization:
//     - Frame Decoder: Initializes libvips for memory-efficient frame decoding
//     - Encoder: Sets up the FFmpeg scratch directory (exports disabled if absent)
//     - Export Orchestrator: Drives the sampling/encoding/delivery pipeline
//     - Memory Monitor: Tracks heap pressure against GOMEMLIMIT
//  4. HTTP Server Setup: Configures routes, middleware, and starts servers
//  5. Graceful Shutdown: Handles SIGINT/SIGTERM, stops all components cleanly
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 8080):
//     - Video library listing and grid geometry
//     - Single-frame rendering at a requested timestamp
//     - Live preview streams over Server-Sent Events
//     - Session controls (play, pause, style changes)
//     - Export start, status, download, and history
//     - Entitlement management
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//
// # Memory Management
//
// Frame decoding and export encoding are the memory-heavy paths. The
// memory monitor watches the heap against GOMEMLIMIT and pauses new
// export jobs while pressure is critical; previews keep running because
// they hold at most one decoded frame at a time.
//
// # Environment Variables
//
// Configuration is primarily through environment variables:
//
//   - VIDEO_DIR: Root directory containing video files
//   - WORK_DIR: Scratch space for the encoder workspace
//   - DATABASE_DIR: Directory for the SQLite database
//   - PORT: Main HTTP server port (default: 8080)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable metrics server (default: true)
//   - SEEK_TIMEOUT: Per-seek decoder deadline (default: 500ms)
//   - PREVIEW_FPS: Fixed preview frame rate for all accounts (default: 12)
//   - PREVIEW_SESSIONS: Concurrent preview session cap
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//   - LOG_HEALTH_CHECKS: Log health endpoint requests (default: false)
//
// # Graceful Shutdown
//
// The application handles SIGINT and SIGTERM signals gracefully:
//
//  1. Close all live preview sessions
//  2. Shutdown metrics server (if running)
//  3. Shutdown main HTTP server (30s timeout)
//  4. Stop the memory monitor
//  5. Close the entitlement store
//
// A running export is cancelled by server shutdown; its scratch files
// are removed by the orchestrator's cleanup pass.
//
// # Build Requirements
//
// The application requires CGO for SQLite and benefits from libvips:
//
//   - SQLite: entitlement and export-history storage
//   - libvips: fast frame decoding (falls back to pure Go decoding)
//   - FFmpeg: frame extraction (ffprobe/ffmpeg) and export encoding
//
// # Related Packages
//
//   - [ascii-theater/internal/ascii]: Palettes, schemes, and glyph mapping
//   - [ascii-theater/internal/grid]: Character grid geometry resolution
//   - [ascii-theater/internal/render]: Frame rasterization to character art
//   - [ascii-theater/internal/preview]: Live preview session loop
//   - [ascii-theater/internal/export]: Export orchestrator state machine
//   - [ascii-theater/internal/encoder]: External FFmpeg encoder adapter
//   - [ascii-theater/internal/entitlement]: Account tiers and export history
//   - [ascii-theater/internal/handlers]: HTTP request handlers
//   - [ascii-theater/internal/startup]: Configuration and initialization
package main
