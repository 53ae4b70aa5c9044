package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	available := runtime.GOMAXPROCS(0)

	if got := Count(1.0, 0); got != available {
		t.Errorf("Count(1.0, 0) = %d, want %d", got, available)
	}
	if got := Count(2.0, 0); got != available*2 {
		t.Errorf("Count(2.0, 0) = %d, want %d", got, available*2)
	}
	if got := Count(2.0, 3); got > 3 {
		t.Errorf("Count(2.0, 3) = %d, exceeds limit", got)
	}
	if got := Count(0.1, 0); got < 1 {
		t.Errorf("Count(0.1, 0) = %d, want at least 1", got)
	}
}

func TestCountOverride(t *testing.T) {
	t.Setenv("PREVIEW_SESSIONS", "5")
	if got := Count(1.0, 0); got != 5 {
		t.Errorf("Count with override = %d, want 5", got)
	}
	if got := Count(1.0, 3); got != 3 {
		t.Errorf("Count with override and limit = %d, want 3", got)
	}

	t.Setenv("PREVIEW_SESSIONS", "not-a-number")
	if got := Count(1.0, 0); got != runtime.GOMAXPROCS(0) {
		t.Errorf("Count with bad override = %d, want GOMAXPROCS", got)
	}
}

func TestSessionCap(t *testing.T) {
	if got := SessionCap(); got < 1 || got > maxPreviewSessions {
		t.Errorf("SessionCap() = %d, want within [1, %d]", got, maxPreviewSessions)
	}
}

func TestSlots(t *testing.T) {
	s := NewSlots(2)

	if s.Capacity() != 2 {
		t.Fatalf("Capacity = %d, want 2", s.Capacity())
	}
	if !s.TryAcquire() || !s.TryAcquire() {
		t.Fatal("could not fill the gate")
	}
	if s.TryAcquire() {
		t.Error("acquired past capacity")
	}
	if s.InUse() != 2 {
		t.Errorf("InUse = %d, want 2", s.InUse())
	}

	s.Release()
	if !s.TryAcquire() {
		t.Error("could not reacquire after release")
	}

	// Releasing more than acquired must not panic or underflow.
	s.Release()
	s.Release()
	s.Release()
	if s.InUse() != 0 {
		t.Errorf("InUse after full release = %d, want 0", s.InUse())
	}
}

func TestSlotsMinimumCapacity(t *testing.T) {
	s := NewSlots(0)
	if s.Capacity() != 1 {
		t.Errorf("Capacity = %d, want floor of 1", s.Capacity())
	}
}
