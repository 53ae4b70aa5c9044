package preview

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"sync"
	"testing"
	"time"

	"ascii-theater/internal/ascii"
	"ascii-theater/internal/tier"
	"ascii-theater/internal/video"
)

// fakeStream hands out flat frames until it runs dry, then io.EOF.
type fakeStream struct {
	mu      sync.Mutex
	playing bool
	closed  bool
	left    int
	readErr error
	frame   image.Image
}

func newFakeStream(frames int) *fakeStream {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 18))
	for y := 0; y < 18; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	return &fakeStream{playing: true, left: frames, frame: img}
}

func (f *fakeStream) Playing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

func (f *fakeStream) Play() {
	f.mu.Lock()
	f.playing = true
	f.mu.Unlock()
}

func (f *fakeStream) Pause() {
	f.mu.Lock()
	f.playing = false
	f.mu.Unlock()
}

func (f *fakeStream) Next() (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	if f.left <= 0 {
		return nil, io.EOF
	}
	f.left--
	return f.frame, nil
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeStream) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func testInfo() video.Info {
	return video.Info{Duration: 10, Width: 640, Height: 360}
}

func testStyle() Style {
	return Style{
		Palette:   ascii.PaletteClassic,
		Scheme:    ascii.SchemeDefault,
		Contrast:  1,
		CharPixel: 10,
	}
}

func startSession(t *testing.T, stream FrameStream, onClose func()) *Session {
	t.Helper()
	return Start(context.Background(), stream, testInfo(), DefaultFPS, tier.ForEntitlement(tier.Free), testStyle(), onClose)
}

func TestTickInterval(t *testing.T) {
	cases := []struct {
		fps  int
		want time.Duration
	}{
		{10, 100 * time.Millisecond},
		{24, 41666666 * time.Nanosecond},
		{30, minTickInterval},
		{60, minTickInterval},
		{0, time.Second},
	}
	for _, tc := range cases {
		if got := TickInterval(tc.fps); got != tc.want {
			t.Errorf("TickInterval(%d) = %v, want %v", tc.fps, got, tc.want)
		}
	}
}

func TestSessionCadenceIgnoresTier(t *testing.T) {
	free := Start(context.Background(), newFakeStream(10), testInfo(), DefaultFPS, tier.ForEntitlement(tier.Free), testStyle(), nil)
	defer free.Close()
	premium := Start(context.Background(), newFakeStream(10), testInfo(), DefaultFPS, tier.ForEntitlement(tier.Premium), testStyle(), nil)
	defer premium.Close()

	want := TickInterval(DefaultFPS)
	if free.tick != want || premium.tick != want {
		t.Errorf("ticks = %v / %v, want both %v", free.tick, premium.tick, want)
	}

	// Neither tier's export sampling rate leaks into the cadence.
	for _, e := range []tier.Entitlement{tier.Free, tier.Premium} {
		if cfg := tier.ForEntitlement(e); TickInterval(cfg.FrameRate) == want {
			t.Fatalf("%s export rate %d collides with the preview rate; test cannot distinguish them", e, cfg.FrameRate)
		}
	}
}

func TestSessionPublishesFrames(t *testing.T) {
	stream := newFakeStream(3)
	s := startSession(t, stream, nil)
	defer s.Close()

	select {
	case frame := <-s.Frames():
		if frame == nil {
			t.Fatal("nil frame published")
		}
		if frame.Columns < 16 || frame.Rows < 12 {
			t.Errorf("frame grid %dx%d below floors", frame.Columns, frame.Rows)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no frame published")
	}
}

func TestSessionEndsOnEOF(t *testing.T) {
	stream := newFakeStream(2)
	closed := make(chan struct{})
	s := Start(context.Background(), stream, testInfo(), DefaultFPS, tier.ForEntitlement(tier.Free), testStyle(), func() { close(closed) })

	// Drain until the channel closes.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-s.Frames():
			if !ok {
				if !stream.isClosed() {
					t.Error("stream left open after session end")
				}
				select {
				case <-closed:
				case <-time.After(time.Second):
					t.Error("onClose never fired")
				}
				return
			}
		case <-deadline:
			t.Fatal("session never ended after stream exhaustion")
		}
	}
}

func TestSessionPauseStopsAdvancing(t *testing.T) {
	stream := newFakeStream(1000)
	s := startSession(t, stream, nil)
	defer s.Close()

	s.Pause()
	if s.Playing() {
		t.Fatal("session reports playing after Pause")
	}

	// Consumed count stabilizes once the in-flight tick lands.
	time.Sleep(300 * time.Millisecond)
	stream.mu.Lock()
	before := stream.left
	stream.mu.Unlock()

	time.Sleep(400 * time.Millisecond)
	stream.mu.Lock()
	after := stream.left
	stream.mu.Unlock()

	if before != after {
		t.Errorf("stream advanced while paused: %d -> %d", before, after)
	}

	s.Play()
	if !s.Playing() {
		t.Error("session reports paused after Play")
	}
}

func TestSessionCloseIdempotent(t *testing.T) {
	stream := newFakeStream(1000)
	calls := 0
	s := Start(context.Background(), stream, testInfo(), DefaultFPS, tier.ForEntitlement(tier.Free), testStyle(), func() { calls++ })

	s.Close()
	s.Close()

	if !stream.isClosed() {
		t.Error("stream left open")
	}
	if calls != 1 {
		t.Errorf("onClose fired %d times, want 1", calls)
	}
	if _, ok := <-s.Frames(); ok {
		// Buffered frames may remain; drain to the close.
		for range s.Frames() {
		}
	}
}

func TestSessionContextCancel(t *testing.T) {
	stream := newFakeStream(1000)
	ctx, cancel := context.WithCancel(context.Background())
	s := Start(ctx, stream, testInfo(), DefaultFPS, tier.ForEntitlement(tier.Free), testStyle(), nil)

	cancel()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-s.Frames():
			if !ok {
				if !stream.isClosed() {
					t.Error("stream left open after context cancel")
				}
				return
			}
		case <-deadline:
			t.Fatal("session survived context cancellation")
		}
	}
}

func TestSessionStyleSnapshot(t *testing.T) {
	stream := newFakeStream(1000)
	s := startSession(t, stream, nil)
	defer s.Close()

	next := testStyle()
	next.Palette = ascii.PaletteBlocks
	next.Scheme = ascii.SchemeMatrix
	next.Contrast = 2
	s.SetStyle(next)

	got := s.Style()
	if got.Palette.Name != "blocks" || got.Contrast != 2 {
		t.Errorf("style snapshot = %+v", got)
	}

	// A frame published after the change uses the new palette's glyph set.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case frame, ok := <-s.Frames():
			if !ok {
				t.Fatal("session ended early")
			}
			glyph := frame.At(frame.Columns/2, frame.Rows/2).Glyph
			for _, g := range ascii.PaletteBlocks.Glyphs {
				if glyph == g {
					return
				}
			}
			// Could be a frame from before the change; keep reading.
		case <-deadline:
			t.Fatal("no frame with the new palette arrived")
		}
	}
}

func TestSessionSkipsReadErrors(t *testing.T) {
	stream := newFakeStream(1000)
	stream.mu.Lock()
	stream.readErr = errors.New("transient decode failure")
	stream.mu.Unlock()
	s := startSession(t, stream, nil)
	defer s.Close()

	// Let a few ticks fail, then recover.
	time.Sleep(250 * time.Millisecond)
	stream.mu.Lock()
	stream.readErr = nil
	stream.mu.Unlock()

	select {
	case frame, ok := <-s.Frames():
		if !ok {
			t.Fatal("session died on a transient read error")
		}
		if frame == nil {
			t.Fatal("nil frame")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("session never recovered from read errors")
	}
}
