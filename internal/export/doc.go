// Package export runs the multi-phase export pipeline: it samples a source
// video at tier-controlled intervals, rasterizes each sampled frame to
// ASCII, renders export stills, and drives the external encoder to produce
// a downloadable artifact.
//
// One Orchestrator executes one job at a time. Callers observe the job as a
// stream of status snapshots; only the orchestrator writes job state. Every
// run ends with a best-effort cleanup of the encoder's file store, on
// success and failure alike.
package export
