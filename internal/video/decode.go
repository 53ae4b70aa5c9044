package video

import (
	"bytes"
	"fmt"
	"image"

	_ "image/png" // ffmpeg pipes frames as PNG

	"ascii-theater/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
)

// maxFrameDimension caps decoded frame size before sampling; bigger frames
// only cost memory since the rasterizer downscales to grid resolution anyway.
const maxFrameDimension = 1920

// decodeFrame turns raw PNG bytes from ffmpeg into an image, using the
// libvips fast path when initialized and falling back to the standard
// decoder otherwise.
func decodeFrame(data []byte) (image.Image, error) {
	if IsVipsAvailable() {
		img, err := decodeWithVips(data)
		if err == nil {
			return img, nil
		}
		logging.Debug("vips frame decode failed, using stdlib: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return constrain(img), nil
}

// decodeWithVips decodes and shrinks oversized frames at decode time,
// which is far cheaper than decoding full size and resizing after.
func decodeWithVips(data []byte) (image.Image, error) {
	ref, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, fmt.Errorf("vips failed to load frame: %w", err)
	}
	defer ref.Close()

	if ref.Width() > maxFrameDimension || ref.Height() > maxFrameDimension {
		if err := ref.Thumbnail(maxFrameDimension, maxFrameDimension, vips.InterestingNone); err != nil {
			return nil, fmt.Errorf("vips shrink failed: %w", err)
		}
	}

	out, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, fmt.Errorf("vips export failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("failed to decode vips output: %w", err)
	}
	return img, nil
}

// constrain downsizes frames larger than maxFrameDimension on the stdlib
// path.
func constrain(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxFrameDimension && b.Dy() <= maxFrameDimension {
		return img
	}
	return imaging.Fit(img, maxFrameDimension, maxFrameDimension, imaging.Lanczos)
}
