package streaming

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ascii-theater/internal/logging"
)

// Sentinel errors for streaming operations.
var (
	// ErrWriteTimeout indicates that a write exceeded the configured
	// timeout, typically a client receiving data too slowly.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates the client disconnected before the
	// transfer completed, detected via the request context.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamCanceled indicates the stream was canceled
	// programmatically via Close.
	ErrStreamCanceled = errors.New("stream canceled")
)

// Config controls timeout behavior for a protected writer.
type Config struct {
	// WriteTimeout bounds a single write operation.
	WriteTimeout time.Duration
	// IdleTimeout bounds the gap between successful writes. Paused
	// previews keep connections open, so SSE streams use a long value.
	IdleTimeout time.Duration
	// ChunkSize splits large writes so cancellation is noticed between
	// chunks. Zero disables chunking.
	ChunkSize int
}

// DefaultConfig suits artifact downloads.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// EventConfig suits server-sent event streams, where a paused session can
// legitimately go quiet for minutes.
func EventConfig() Config {
	return Config{
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  10 * time.Minute,
		ChunkSize:    0,
	}
}

// Writer wraps an http.ResponseWriter with timeout protection. It is safe
// for concurrent use; Close is idempotent.
type Writer struct {
	w       http.ResponseWriter
	ctx     context.Context
	cancel  context.CancelFunc
	config  Config
	flusher http.Flusher

	mu           sync.Mutex
	started      time.Time
	lastWrite    time.Time
	bytesWritten int64
	closed       bool
}

// NewWriter creates a timeout-protected writer bound to the request
// context. Callers must Close it when the transfer ends.
func NewWriter(ctx context.Context, w http.ResponseWriter, config Config) *Writer {
	writerCtx, cancel := context.WithCancel(ctx)
	tw := &Writer{
		w:         w,
		ctx:       writerCtx,
		cancel:    cancel,
		config:    config,
		started:   time.Now(),
		lastWrite: time.Now(),
	}
	if flusher, ok := w.(http.Flusher); ok {
		tw.flusher = flusher
	}
	if config.IdleTimeout > 0 {
		go tw.idleChecker()
	}
	return tw
}

// Write implements io.Writer with timeout protection.
func (tw *Writer) Write(p []byte) (int, error) {
	tw.mu.Lock()
	if tw.closed {
		tw.mu.Unlock()
		return 0, ErrStreamCanceled
	}
	tw.mu.Unlock()

	select {
	case <-tw.ctx.Done():
		return 0, tw.contextError()
	default:
	}

	if tw.config.ChunkSize > 0 && len(p) > tw.config.ChunkSize {
		return tw.writeChunked(p)
	}
	return tw.writeWithTimeout(p)
}

// WriteEvent writes one server-sent event and flushes it immediately.
func (tw *Writer) WriteEvent(event string, data []byte) error {
	payload := fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)
	if _, err := tw.Write([]byte(payload)); err != nil {
		return err
	}
	tw.Flush()
	return nil
}

// WriteComment writes an SSE comment line, used as a keep-alive.
func (tw *Writer) WriteComment(text string) error {
	if _, err := tw.Write([]byte(": " + text + "\n\n")); err != nil {
		return err
	}
	tw.Flush()
	return nil
}

// Flush flushes the underlying writer if it supports it.
func (tw *Writer) Flush() {
	if tw.flusher != nil {
		tw.flusher.Flush()
	}
}

// Stats returns bytes written and elapsed time.
func (tw *Writer) Stats() (int64, time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.bytesWritten, time.Since(tw.started)
}

// Close terminates the stream. Safe to call more than once.
func (tw *Writer) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.closed {
		return nil
	}
	tw.closed = true
	tw.cancel()
	return nil
}

func (tw *Writer) writeChunked(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		select {
		case <-tw.ctx.Done():
			return total, tw.contextError()
		default:
		}

		chunk := tw.config.ChunkSize
		if len(p) < chunk {
			chunk = len(p)
		}

		n, err := tw.writeWithTimeout(p[:chunk])
		total += n
		if err != nil {
			return total, err
		}
		p = p[chunk:]

		tw.Flush()
	}
	return total, nil
}

func (tw *Writer) writeWithTimeout(p []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)

	go func() {
		n, err := tw.w.Write(p)
		done <- result{n, err}
	}()

	var timeout <-chan time.Time
	if tw.config.WriteTimeout > 0 {
		timer := time.NewTimer(tw.config.WriteTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case res := <-done:
		if res.err != nil {
			return res.n, res.err
		}
		tw.mu.Lock()
		tw.bytesWritten += int64(res.n)
		tw.lastWrite = time.Now()
		tw.mu.Unlock()
		return res.n, nil
	case <-timeout:
		tw.cancel()
		return 0, ErrWriteTimeout
	case <-tw.ctx.Done():
		return 0, tw.contextError()
	}
}

// idleChecker terminates the stream when no data has flowed for the idle
// window.
func (tw *Writer) idleChecker() {
	interval := tw.config.IdleTimeout / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-tw.ctx.Done():
			return
		case <-ticker.C:
			tw.mu.Lock()
			idle := time.Since(tw.lastWrite)
			closed := tw.closed
			tw.mu.Unlock()
			if closed {
				return
			}
			if idle > tw.config.IdleTimeout {
				logging.Debug("Stream idle for %v, terminating", idle)
				tw.cancel()
				return
			}
		}
	}
}

func (tw *Writer) contextError() error {
	if errors.Is(tw.ctx.Err(), context.Canceled) {
		tw.mu.Lock()
		closed := tw.closed
		tw.mu.Unlock()
		if closed {
			return ErrStreamCanceled
		}
		return ErrClientGone
	}
	return tw.ctx.Err()
}
