package encoder

import "context"

// Encoder is the external encoding collaborator consumed by the export
// orchestrator. Implementations own a private input/output file store;
// Execute runs one encode job over previously written inputs.
type Encoder interface {
	// Load prepares the encoder. It is idempotent and may fail when the
	// hosting environment lacks what the encoder needs to run.
	Load(ctx context.Context) error

	// WriteInputFile stores one input frame under the given name.
	WriteInputFile(name string, data []byte) error

	// DeleteInputFile removes one input frame. Missing files are not an
	// error; callers treat failures as ignorable.
	DeleteInputFile(name string) error

	// Execute runs an encode job with the given argument list. Failure is
	// fatal to the job that requested it.
	Execute(ctx context.Context, args []string) error

	// ReadOutputFile returns the bytes of a produced artifact.
	ReadOutputFile(name string) ([]byte, error)
}
