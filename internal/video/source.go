package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strconv"
	"time"

	"ascii-theater/internal/logging"
	"ascii-theater/internal/metrics"
)

const (
	// seekEpsilon keeps extraction timestamps clear of end-of-stream
	// edge effects.
	seekEpsilon = 0.05

	// DefaultSeekTimeout bounds the wait for a frame-accurate seek before
	// falling back to fast keyframe seeking.
	DefaultSeekTimeout = 500 * time.Millisecond
)

// ErrSeekFailed wraps a seek request that could not start or produced no
// pixel data at all. Late or imprecise seeks are not errors.
var ErrSeekFailed = errors.New("seek failed")

// Source is a capability handle over one probed video file. The export
// pipeline opens its own Source, independent of any preview stream, so the
// two never contend over playback position or decode state.
type Source struct {
	path        string
	info        Info
	seekTimeout time.Duration
}

// Open probes path and returns a Source. The file itself stays externally
// owned; Source never modifies it.
func Open(ctx context.Context, path string) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("source not accessible: %w", err)
	}

	info, err := Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	return &Source{path: path, info: *info, seekTimeout: DefaultSeekTimeout}, nil
}

// Info returns the probed stream metadata.
func (s *Source) Info() Info {
	return s.info
}

// Path returns the underlying file path.
func (s *Source) Path() string {
	return s.path
}

// SetSeekTimeout overrides the bounded wait for frame-accurate seeks.
func (s *Source) SetSeekTimeout(d time.Duration) {
	if d > 0 {
		s.seekTimeout = d
	}
}

// FrameAt extracts the frame at the given timestamp, clamped to
// [0, duration-epsilon]. The frame-accurate attempt is raced against the
// seek timeout; on timeout the extraction retries with fast keyframe
// seeking, trading precision for forward progress. The returned error is
// always ErrSeekFailed-wrapped and indicates no usable pixel data.
func (s *Source) FrameAt(ctx context.Context, ts float64) (image.Image, error) {
	ts = clampTimestamp(ts, s.info.Duration)

	accurateCtx, cancel := context.WithTimeout(ctx, s.seekTimeout)
	frame, err := s.extract(accurateCtx, ts, true)
	cancel()
	if err == nil {
		return frame, nil
	}

	if accurateCtx.Err() != context.DeadlineExceeded {
		// The seek itself failed, not the timeout. Still try the fast
		// path once; some containers only support keyframe seeking.
		logging.Debug("Accurate seek to %.3fs failed: %v", ts, err)
	} else {
		logging.Debug("Accurate seek to %.3fs timed out after %s, using keyframe seek", ts, s.seekTimeout)
		metrics.SeekFallbacks.Inc()
	}

	frame, err = s.extract(ctx, ts, false)
	if err != nil {
		return nil, fmt.Errorf("%w: no frame at %.3fs: %v", ErrSeekFailed, ts, err)
	}
	return frame, nil
}

// extract runs one ffmpeg single-frame extraction. With accurate seeking
// the -ss option is applied after the input (decode to the exact frame);
// otherwise before it (jump to the nearest keyframe).
func (s *Source) extract(ctx context.Context, ts float64, accurate bool) (image.Image, error) {
	pos := strconv.FormatFloat(ts, 'f', 3, 64)

	var args []string
	if accurate {
		args = []string{"-i", s.path, "-ss", pos}
	} else {
		args = []string{"-ss", pos, "-i", s.path}
	}
	args = append(args,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg seek failed: %w - %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame data")
	}

	return decodeFrame(stdout.Bytes())
}

func clampTimestamp(ts, duration float64) float64 {
	if ts < 0 {
		return 0
	}
	if duration > seekEpsilon && ts > duration-seekEpsilon {
		return duration - seekEpsilon
	}
	return ts
}
