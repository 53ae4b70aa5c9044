// Package video provides the source video capability: stream metadata via
// ffprobe, frame-accurate extraction for export sampling, and a sequential
// realtime frame stream for live preview.
//
// Frame extraction uses FFmpeg's output-side seeking for frame accuracy,
// bounded by a short timeout; when the accurate seek does not settle in
// time, extraction falls back to fast keyframe seeking so the export keeps
// moving. Decoded frames pass through libvips when available, with a
// standard library fallback.
//
// FFmpeg and ffprobe must be installed and available in the system PATH.
package video
