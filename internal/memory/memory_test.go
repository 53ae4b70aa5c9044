package memory

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.HighWaterMark >= config.CriticalWaterMark {
		t.Errorf("high water mark %v must sit below critical %v",
			config.HighWaterMark, config.CriticalWaterMark)
	}
	if config.CheckInterval <= 0 {
		t.Error("check interval must be positive")
	}
}

func TestMonitorWithoutLimit(t *testing.T) {
	m := NewMonitor(Config{CheckInterval: time.Millisecond})
	if m.limit != 0 {
		// GOMEMLIMIT is set in this environment; skip the no-limit path.
		t.Skip("a memory limit is configured")
	}

	m.Start()
	defer m.Stop()

	if m.Paused() {
		t.Error("monitor without a limit reports paused")
	}
	if !m.WaitIfPaused() {
		t.Error("WaitIfPaused blocked with no limit configured")
	}
}

func TestWaitIfPausedReleasesOnStop(t *testing.T) {
	m := NewMonitor(Config{
		MemoryLimitBytes:  1, // everything is over this limit
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     10 * time.Millisecond,
	})
	m.Start()

	// Give the sampler time to observe the over-limit heap and pause.
	deadline := time.After(2 * time.Second)
	for !m.Paused() {
		select {
		case <-deadline:
			t.Fatal("monitor never paused despite a 1-byte limit")
		case <-time.After(10 * time.Millisecond):
		}
	}

	released := make(chan bool, 1)
	go func() { released <- m.WaitIfPaused() }()

	m.Stop()

	select {
	case ok := <-released:
		if ok {
			t.Error("WaitIfPaused reported safe-to-proceed after Stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitIfPaused never returned after Stop")
	}
}

func TestUsageTracksHeap(t *testing.T) {
	m := NewMonitor(Config{
		MemoryLimitBytes:  1 << 40,
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     10 * time.Millisecond,
	})
	m.Start()
	defer m.Stop()

	deadline := time.After(2 * time.Second)
	for m.Usage() == 0 {
		select {
		case <-deadline:
			t.Fatal("usage never sampled")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
