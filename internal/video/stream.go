package video

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"ascii-theater/internal/logging"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Stream is a sequential realtime frame reader over one source, used by the
// preview loop. Frames arrive paced at the requested rate; when the
// consumer stops reading, pipe backpressure stalls the decoder, so a paused
// stream does not advance.
type Stream struct {
	cmd    *exec.Cmd
	stdout *bufio.Reader
	cancel context.CancelFunc

	mu      sync.Mutex
	playing bool
	closed  bool
}

// OpenStream starts a paced decode of the source at the given frame rate.
// The stream starts in the playing state.
func (s *Source) OpenStream(ctx context.Context, fps int) (*Stream, error) {
	if fps < 1 {
		fps = 1
	}

	streamCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(streamCtx, "ffmpeg",
		"-re",
		"-i", s.path,
		"-vf", "fps="+strconv.Itoa(fps),
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stream pipe: %w", err)
	}
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start stream decoder: %w", err)
	}

	logging.Debug("Preview stream opened for %s at %d fps", s.path, fps)
	return &Stream{
		cmd:     cmd,
		stdout:  bufio.NewReaderSize(stdout, 1<<20),
		cancel:  cancel,
		playing: true,
	}, nil
}

// Play resumes frame consumption.
func (st *Stream) Play() {
	st.mu.Lock()
	st.playing = true
	st.mu.Unlock()
}

// Pause stops frame consumption; the decoder stalls on backpressure.
func (st *Stream) Pause() {
	st.mu.Lock()
	st.playing = false
	st.mu.Unlock()
}

// Playing reports whether the stream should be advancing.
func (st *Stream) Playing() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.playing
}

// Next reads and decodes the next frame. It returns io.EOF when the source
// is exhausted or the stream has been closed.
func (st *Stream) Next() (image.Image, error) {
	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return nil, io.EOF
	}
	st.mu.Unlock()

	data, err := readPNG(st.stdout)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	return decodeFrame(data)
}

// Close pauses and tears down the stream; the decoder process is killed.
func (st *Stream) Close() error {
	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return nil
	}
	st.closed = true
	st.playing = false
	st.mu.Unlock()

	st.cancel()
	// The process exits on context cancellation; Wait reaps it.
	_ = st.cmd.Wait()
	return nil
}

// readPNG reads exactly one PNG image from r by walking its chunk
// structure until IEND.
func readPNG(r *bufio.Reader) ([]byte, error) {
	var buf bytes.Buffer

	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, err
	}
	if !bytes.Equal(sig, pngSignature) {
		return nil, fmt.Errorf("stream desynchronized: bad PNG signature")
	}
	buf.Write(sig)

	header := make([]byte, 8) // chunk length + type
	for {
		if _, err := io.ReadFull(r, header); err != nil {
			return nil, err
		}
		buf.Write(header)

		length := binary.BigEndian.Uint32(header[:4])
		// chunk data + CRC
		if _, err := io.CopyN(&buf, r, int64(length)+4); err != nil {
			return nil, err
		}

		if bytes.Equal(header[4:], []byte("IEND")) {
			return buf.Bytes(), nil
		}
	}
}
