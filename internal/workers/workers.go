// Package workers sizes concurrent capacity from the CPUs actually
// available, respecting container limits via GOMAXPROCS.
package workers

import (
	"os"
	"runtime"
	"strconv"
)

// maxPreviewSessions caps concurrent preview loops regardless of CPU
// count; each one holds a decoder process.
const maxPreviewSessions = 8

// Count returns the optimal number of workers for a given task type.
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//
// The limit parameter caps the worker count. Use 0 for no limit.
// Can be overridden with the PREVIEW_SESSIONS environment variable.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("PREVIEW_SESSIONS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)
	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// SessionCap returns how many preview sessions may run at once: two per
// CPU, bounded by maxPreviewSessions.
func SessionCap() int {
	return Count(2.0, maxPreviewSessions)
}

// Slots is a fixed-capacity admission gate for preview sessions.
type Slots struct {
	sem chan struct{}
}

// NewSlots creates a gate with the given capacity.
func NewSlots(capacity int) *Slots {
	if capacity < 1 {
		capacity = 1
	}
	return &Slots{sem: make(chan struct{}, capacity)}
}

// TryAcquire claims a slot without blocking. It reports whether a slot was
// available.
func (s *Slots) TryAcquire() bool {
	select {
	case s.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release returns a previously acquired slot.
func (s *Slots) Release() {
	select {
	case <-s.sem:
	default:
	}
}

// InUse returns the number of claimed slots.
func (s *Slots) InUse() int {
	return len(s.sem)
}

// Capacity returns the total slot count.
func (s *Slots) Capacity() int {
	return cap(s.sem)
}
