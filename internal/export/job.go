package export

import "ascii-theater/internal/encoder"

// Status is the export job phase.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusInitializing Status = "initializing"
	StatusSampling     Status = "sampling"
	StatusEncoding     Status = "encoding"
	StatusDelivering   Status = "delivering"
	StatusDone         Status = "done"
	StatusError        Status = "error"
)

// Terminal reports whether the status ends a job.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Progress bands per phase. Progress is monotonic within a band.
const (
	progressInitDone     = 0.1
	progressSamplingDone = 0.6
	progressEncodingDone = 0.9
)

// Artifact is a finished export ready for download.
type Artifact struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
	Data []byte `json:"-"`
}

// Job is one export job's externally visible state. Snapshots are value
// copies; only the orchestrator mutates the live job.
type Job struct {
	ID       string         `json:"id"`
	Status   Status         `json:"status"`
	Format   encoder.Format `json:"format"`
	Progress float64        `json:"progress"`
	Frames   int            `json:"frames,omitempty"`
	Message  string         `json:"message,omitempty"`
	Artifact *Artifact      `json:"artifact,omitempty"`
}
