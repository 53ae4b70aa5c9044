// Package preview drives live ASCII playback sessions. A session wraps a
// paced frame stream, rasterizes each decoded frame with the most recent
// style settings, and fans results out to a subscriber channel. Style
// changes between ticks never tear a frame: every tick works from one
// atomic snapshot of the settings.
package preview
