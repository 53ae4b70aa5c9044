package encoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"ascii-theater/internal/logging"
	"ascii-theater/internal/metrics"
)

// executeTimeout bounds a single encode run. Frame caps bound job length
// indirectly; this is a back-stop against a wedged ffmpeg process.
const executeTimeout = 5 * time.Minute

// FFmpeg is an Encoder backed by the ffmpeg binary and a private work
// directory serving as the input/output file store.
type FFmpeg struct {
	workDir string

	mu     sync.Mutex
	path   string
	loaded bool
}

// NewFFmpeg creates an FFmpeg encoder rooted at workDir. The directory is
// created on Load, not here.
func NewFFmpeg(workDir string) *FFmpeg {
	return &FFmpeg{workDir: workDir}
}

// Load locates the ffmpeg binary and prepares the work directory. It is
// idempotent; subsequent calls after a successful load are no-ops.
func (f *FFmpeg) Load(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loaded {
		return nil
	}

	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return classify(fmt.Errorf("ffmpeg not found in PATH: %w", err), "")
	}

	if err := os.MkdirAll(f.workDir, 0755); err != nil {
		return classify(fmt.Errorf("failed to create encoder work directory: %w", err), "")
	}

	f.path = path
	f.loaded = true
	logging.Info("Encoder loaded: %s (work dir: %s)", path, f.workDir)
	return nil
}

// WriteInputFile stores one frame in the work directory.
func (f *FFmpeg) WriteInputFile(name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(f.workDir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write input file %s: %w", name, err)
	}
	return nil
}

// DeleteInputFile removes one frame from the work directory. Missing files
// are not an error.
func (f *FFmpeg) DeleteInputFile(name string) error {
	err := os.Remove(filepath.Join(f.workDir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Execute runs one encode job in the work directory. The caller's argument
// list names the ordered input pattern and the output filename; Execute
// only adds overwrite and banner suppression flags.
func (f *FFmpeg) Execute(ctx context.Context, args []string) error {
	f.mu.Lock()
	if !f.loaded {
		f.mu.Unlock()
		return fmt.Errorf("encoder not loaded")
	}
	path := f.path
	f.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, executeTimeout)
	defer cancel()

	full := append([]string{"-hide_banner", "-y"}, args...)
	cmd := exec.CommandContext(runCtx, path, full...)
	cmd.Dir = f.workDir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.Debug("Encoder executing: ffmpeg %v", args)
	start := time.Now()
	err := cmd.Run()
	metrics.EncoderRunDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("encode run timed out after %s", executeTimeout)
		}
		logging.Error("Encoder stderr: %s", stderr.String())
		return classify(fmt.Errorf("ffmpeg failed: %w", err), stderr.String())
	}
	return nil
}

// ReadOutputFile returns the bytes of a produced artifact.
func (f *FFmpeg) ReadOutputFile(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.workDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read output file %s: %w", name, err)
	}
	return data, nil
}
