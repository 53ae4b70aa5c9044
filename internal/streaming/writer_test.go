package streaming

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWriteAndStats(t *testing.T) {
	w := httptest.NewRecorder()
	tw := NewWriter(context.Background(), w, DefaultConfig())
	defer func() {
		if err := tw.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	}()

	data := []byte("frame payload")
	n, err := tw.Write(data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(data) {
		t.Errorf("wrote %d bytes, want %d", n, len(data))
	}

	written, _ := tw.Stats()
	if written != int64(len(data)) {
		t.Errorf("Stats bytes = %d, want %d", written, len(data))
	}
	if w.Body.String() != string(data) {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestWriteChunked(t *testing.T) {
	w := httptest.NewRecorder()
	config := DefaultConfig()
	config.ChunkSize = 4
	tw := NewWriter(context.Background(), w, config)
	defer tw.Close()

	data := []byte("0123456789abcdef")
	n, err := tw.Write(data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(data) {
		t.Errorf("wrote %d bytes, want %d", n, len(data))
	}
	if w.Body.String() != string(data) {
		t.Errorf("chunked body = %q", w.Body.String())
	}
}

func TestWriteAfterClose(t *testing.T) {
	w := httptest.NewRecorder()
	tw := NewWriter(context.Background(), w, DefaultConfig())

	if err := tw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := tw.Write([]byte("data")); !errors.Is(err, ErrStreamCanceled) {
		t.Errorf("Write after close = %v, want ErrStreamCanceled", err)
	}
}

func TestClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := httptest.NewRecorder()
	tw := NewWriter(ctx, w, DefaultConfig())
	defer tw.Close()

	cancel()

	if _, err := tw.Write([]byte("data")); !errors.Is(err, ErrClientGone) {
		t.Errorf("Write after disconnect = %v, want ErrClientGone", err)
	}
}

func TestWriteEvent(t *testing.T) {
	w := httptest.NewRecorder()
	tw := NewWriter(context.Background(), w, EventConfig())
	defer tw.Close()

	if err := tw.WriteEvent("frame", []byte(`{"columns":80}`)); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}

	body := w.Body.String()
	if !strings.HasPrefix(body, "event: frame\n") {
		t.Errorf("event line missing: %q", body)
	}
	if !strings.Contains(body, `data: {"columns":80}`) {
		t.Errorf("data line missing: %q", body)
	}
	if !strings.HasSuffix(body, "\n\n") {
		t.Errorf("event not terminated by blank line: %q", body)
	}
	if !w.Flushed {
		t.Error("event was not flushed")
	}
}

func TestWriteComment(t *testing.T) {
	w := httptest.NewRecorder()
	tw := NewWriter(context.Background(), w, EventConfig())
	defer tw.Close()

	if err := tw.WriteComment("keepalive"); err != nil {
		t.Fatalf("WriteComment: %v", err)
	}
	if got := w.Body.String(); got != ": keepalive\n\n" {
		t.Errorf("comment = %q", got)
	}
}

func TestIdleTermination(t *testing.T) {
	w := httptest.NewRecorder()
	config := Config{
		WriteTimeout: time.Second,
		IdleTimeout:  50 * time.Millisecond,
	}
	tw := NewWriter(context.Background(), w, config)
	defer tw.Close()

	// Wait past the idle window plus a checker interval.
	time.Sleep(1200 * time.Millisecond)

	_, err := tw.Write([]byte("late"))
	if err == nil {
		t.Fatal("write succeeded after idle termination")
	}
}
