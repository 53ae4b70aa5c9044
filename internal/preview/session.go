package preview

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"
	"time"

	"ascii-theater/internal/ascii"
	"ascii-theater/internal/grid"
	"ascii-theater/internal/logging"
	"ascii-theater/internal/metrics"
	"ascii-theater/internal/tier"
	"ascii-theater/internal/video"

	"github.com/google/uuid"
)

// DefaultFPS is the preview frame rate. Previews run at one constant low
// rate for every account; the tier policy governs export sampling only.
const DefaultFPS = 12

// minTickInterval floors the loop cadence so a high requested frame rate
// cannot spin the rasterizer faster than the terminal or browser can
// usefully consume.
const minTickInterval = 40 * time.Millisecond

// frameBuffer is the subscriber channel depth. A slow subscriber loses the
// oldest frames, never the newest.
const frameBuffer = 4

// TickInterval returns the loop cadence for a frame rate, floored at
// minTickInterval.
func TickInterval(fps int) time.Duration {
	if fps < 1 {
		fps = 1
	}
	interval := time.Second / time.Duration(fps)
	if interval < minTickInterval {
		return minTickInterval
	}
	return interval
}

// FrameStream is the paced decode source a session consumes.
// *video.Stream satisfies it.
type FrameStream interface {
	Playing() bool
	Play()
	Pause()
	Next() (image.Image, error)
	Close() error
}

// Style is the rasterization settings a session applies. Sessions snapshot
// it once per tick.
type Style struct {
	Palette        ascii.Palette
	Scheme         ascii.Scheme
	Contrast       float64
	CharPixel      float64
	ViewportHeight int
}

// Session is one live preview loop. All methods are safe for concurrent
// use; Close is idempotent.
type Session struct {
	id      string
	stream  FrameStream
	info    video.Info
	tier    tier.Config
	surface *ascii.Surface
	tick    time.Duration

	mu    sync.Mutex
	style Style

	frames  chan *ascii.Frame
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once

	// onClose releases the session's slot in the cap. May be nil.
	onClose func()
}

// Start launches a preview loop over the given stream, ticking at the
// given frame rate. The tier policy is consulted only for its char-pixel
// bounds, never for cadence. The loop runs until the stream is exhausted,
// the context is cancelled, or Close is called; in every case the stream
// is closed and onClose fires exactly once.
func Start(ctx context.Context, stream FrameStream, info video.Info, fps int, cfg tier.Config, style Style, onClose func()) *Session {
	s := &Session{
		id:      uuid.NewString(),
		stream:  stream,
		info:    info,
		tier:    cfg,
		surface: ascii.NewSurface(),
		tick:    TickInterval(fps),
		style:   style,
		frames:  make(chan *ascii.Frame, frameBuffer),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
		onClose: onClose,
	}
	metrics.PreviewSessionsActive.Inc()
	go s.loop(ctx)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Frames is the subscriber channel. It closes when the session ends.
func (s *Session) Frames() <-chan *ascii.Frame { return s.frames }

// Play resumes playback.
func (s *Session) Play() { s.stream.Play() }

// Pause halts playback without tearing the session down; the loop keeps
// ticking so a style change still lands on resume.
func (s *Session) Pause() { s.stream.Pause() }

// Playing reports whether the session is advancing.
func (s *Session) Playing() bool { return s.stream.Playing() }

// SetStyle replaces the rasterization settings. The change takes effect on
// the next tick as one unit.
func (s *Session) SetStyle(style Style) {
	s.mu.Lock()
	s.style = style
	s.mu.Unlock()
}

// Style returns the current settings snapshot.
func (s *Session) Style() Style {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

// Close stops the loop and waits for it to finish tearing down.
func (s *Session) Close() {
	s.once.Do(func() { close(s.stop) })
	<-s.stopped
}

func (s *Session) loop(ctx context.Context) {
	defer func() {
		if err := s.stream.Close(); err != nil {
			logging.Debug("Preview %s: stream close: %v", s.id, err)
		}
		close(s.frames)
		metrics.PreviewSessionsActive.Dec()
		if s.onClose != nil {
			s.onClose()
		}
		close(s.stopped)
		logging.Debug("Preview %s ended", s.id)
	}()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
		}

		if !s.stream.Playing() {
			metrics.PreviewTicksTotal.WithLabelValues("paused").Inc()
			continue
		}

		frame, err := s.stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logging.Debug("Preview %s: source exhausted", s.id)
				return
			}
			logging.Warn("Preview %s: frame read failed: %v", s.id, err)
			metrics.PreviewTicksTotal.WithLabelValues("skipped").Inc()
			continue
		}

		style := s.Style()
		viewport := style.ViewportHeight
		if viewport <= 0 {
			viewport = s.info.Height
		}
		geom := grid.Resolve(s.info.Width, s.info.Height, viewport, s.tier.ClampCharPixel(style.CharPixel))

		start := time.Now()
		out, err := s.surface.Rasterize(frame, geom, ascii.Options{
			Palette:  style.Palette,
			Scheme:   style.Scheme,
			Contrast: style.Contrast,
		})
		if err != nil {
			metrics.PreviewTicksTotal.WithLabelValues("skipped").Inc()
			continue
		}
		metrics.RasterizeDuration.Observe(time.Since(start).Seconds())
		metrics.FramesRasterized.WithLabelValues("preview").Inc()

		s.publish(out)
		metrics.PreviewTicksTotal.WithLabelValues("published").Inc()
	}
}

// publish delivers a frame without blocking the loop, dropping the oldest
// buffered frame when the subscriber lags.
func (s *Session) publish(frame *ascii.Frame) {
	select {
	case s.frames <- frame:
	default:
		select {
		case <-s.frames:
		default:
		}
		select {
		case s.frames <- frame:
		default:
		}
	}
}
