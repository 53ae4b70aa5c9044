package encoder

import (
	"errors"
	"strings"
)

// Category sentinels for encoder failures. Callers match with errors.Is to
// upgrade generic failures into actionable user messaging.
var (
	// ErrEnvironmentIncompatible means the encoder cannot run in this
	// environment at all (binary missing, no exec permission).
	ErrEnvironmentIncompatible = errors.New("encoder environment incompatible")

	// ErrMemoryExhausted means the encode run died from memory pressure.
	ErrMemoryExhausted = errors.New("encoder ran out of memory")
)

var memorySignatures = []string{
	"cannot allocate memory",
	"out of memory",
	"memory exhausted",
	"signal: killed",
}

var environmentSignatures = []string{
	"executable file not found",
	"ffmpeg not found",
	"permission denied",
}

// classify wraps err with a recognizable category when the combined error
// and stderr text match a known failure signature. Unmatched errors pass
// through unchanged.
func classify(err error, stderr string) error {
	if err == nil {
		return nil
	}

	text := strings.ToLower(err.Error() + " " + stderr)
	for _, sig := range memorySignatures {
		if strings.Contains(text, sig) {
			return errors.Join(ErrMemoryExhausted, err)
		}
	}
	for _, sig := range environmentSignatures {
		if strings.Contains(text, sig) {
			return errors.Join(ErrEnvironmentIncompatible, err)
		}
	}
	return err
}
