package export

import (
	"errors"
	"fmt"
)

// Terminal failure categories. Exactly one is reported per failed job.
var (
	// ErrEncoderUnavailable means the external encoder could not
	// initialize; the job never left the initializing phase.
	ErrEncoderUnavailable = errors.New("encoder unavailable")

	// ErrNoFramesCaptured means every sampling instant was skipped.
	ErrNoFramesCaptured = errors.New("no frames captured")

	// ErrEncodingFailed wraps an external encoder execution failure.
	ErrEncodingFailed = errors.New("encoding failed")

	// ErrDeliveryFailed means the produced artifact could not be read
	// back or packaged.
	ErrDeliveryFailed = errors.New("delivery failed")
)

// FrameError reports a fatal failure while submitting one frame to the
// encoder. Index is 1-based for user display.
type FrameError struct {
	Index int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("failed to process frame %d: %v", e.Index, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}
