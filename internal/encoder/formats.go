package encoder

import (
	"fmt"
	"strconv"
)

// Format identifies an export container.
type Format string

const (
	FormatGIF Format = "gif"
	FormatMP4 Format = "mp4"
	FormatMOV Format = "mov"
)

// InputPattern is the ffmpeg sequence pattern for frame input files.
const InputPattern = "frame_%04d.png"

// InputFileName returns the zero-padded, 0-indexed input filename for one
// frame.
func InputFileName(index int) string {
	return fmt.Sprintf(InputPattern, index)
}

var mimeTypes = map[Format]string{
	FormatGIF: "image/gif",
	FormatMP4: "video/mp4",
	FormatMOV: "video/quicktime",
}

// ParseFormat normalizes a user-supplied format string. Unknown values
// default to MP4.
func ParseFormat(s string) Format {
	switch Format(s) {
	case FormatGIF, FormatMP4, FormatMOV:
		return Format(s)
	default:
		return FormatMP4
	}
}

// MIME returns the registered media type for the format's artifact.
func (f Format) MIME() string {
	if m, ok := mimeTypes[f]; ok {
		return m
	}
	return mimeTypes[FormatMP4]
}

// OutputName returns the fixed artifact filename for the format.
func (f Format) OutputName() string {
	return "ascii-output." + string(f)
}

// Args builds the encode argument list for the format at the given frame
// rate. Inputs are named by InputPattern; the last argument is the output
// filename.
func (f Format) Args(fps int) []string {
	rate := strconv.Itoa(fps)
	switch f {
	case FormatGIF:
		return []string{
			"-framerate", rate,
			"-i", InputPattern,
			"-vf", "scale=iw:ih:flags=lanczos",
			"-loop", "0",
			f.OutputName(),
		}
	case FormatMOV:
		return []string{
			"-framerate", rate,
			"-i", InputPattern,
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-movflags", "+faststart",
			f.OutputName(),
		}
	default:
		return []string{
			"-framerate", rate,
			"-i", InputPattern,
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			FormatMP4.OutputName(),
		}
	}
}
