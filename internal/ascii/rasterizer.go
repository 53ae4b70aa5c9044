package ascii

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"ascii-theater/internal/grid"

	xdraw "golang.org/x/image/draw"
)

// Contrast bounds. Inputs outside this range are clamped, not rejected.
const (
	MinContrast = 0.2
	MaxContrast = 2.5
)

// ErrNoFrame indicates the source frame carried no usable pixel data.
// This is the rasterizer's only failure mode; it signals a broken
// environment rather than a transient per-frame problem.
var ErrNoFrame = errors.New("no usable frame pixel data")

// Cell is one character of a rasterized frame. Immutable once produced.
type Cell struct {
	Glyph      rune
	Color      color.NRGBA
	Brightness float64
}

// Frame is a rasterized character grid, row-major. A Frame is owned
// exclusively by whichever consumer requested it and is never mutated
// after creation.
type Frame struct {
	Columns      int
	Rows         int
	CharWidthPx  float64
	CharHeightPx float64
	Cells        []Cell
}

// At returns the cell at the given column and row.
func (f *Frame) At(col, row int) Cell {
	return f.Cells[row*f.Columns+col]
}

// Lines renders the glyphs as one string per row, without color.
func (f *Frame) Lines() []string {
	lines := make([]string, f.Rows)
	row := make([]rune, f.Columns)
	for y := 0; y < f.Rows; y++ {
		for x := 0; x < f.Columns; x++ {
			row[x] = f.Cells[y*f.Columns+x].Glyph
		}
		lines[y] = string(row)
	}
	return lines
}

// Options are the style parameters for one rasterization.
type Options struct {
	Palette  Palette
	Scheme   Scheme
	Contrast float64
}

// Surface is a reusable off-screen sampling buffer. The scaled-down frame
// is drawn into the buffer, which is reallocated only when the grid size
// changes. At most one rasterization may be in flight per Surface.
type Surface struct {
	mu  sync.Mutex
	buf *image.NRGBA
}

// NewSurface returns an empty sampling surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Rasterize scales frame into the sampling buffer at grid resolution and
// maps every pixel to a glyph and color. Identical inputs always produce
// identical output.
func (s *Surface) Rasterize(frame image.Image, geom grid.Geometry, opts Options) (*Frame, error) {
	if frame == nil || frame.Bounds().Empty() {
		return nil, ErrNoFrame
	}
	if geom.Columns <= 0 || geom.Rows <= 0 {
		return nil, fmt.Errorf("invalid grid geometry %dx%d", geom.Columns, geom.Rows)
	}
	if len(opts.Palette.Glyphs) == 0 {
		opts.Palette = PaletteClassic
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil || s.buf.Rect.Dx() != geom.Columns || s.buf.Rect.Dy() != geom.Rows {
		s.buf = image.NewNRGBA(image.Rect(0, 0, geom.Columns, geom.Rows))
	}
	xdraw.CatmullRom.Scale(s.buf, s.buf.Rect, frame, frame.Bounds(), xdraw.Src, nil)

	contrast := clamp(opts.Contrast, MinContrast, MaxContrast)
	glyphs := opts.Palette.Glyphs
	last := float64(len(glyphs) - 1)

	cells := make([]Cell, geom.Columns*geom.Rows)
	for y := 0; y < geom.Rows; y++ {
		for x := 0; x < geom.Columns; x++ {
			i := s.buf.PixOffset(x, y)
			r := float64(s.buf.Pix[i])
			g := float64(s.buf.Pix[i+1])
			b := float64(s.buf.Pix[i+2])

			// Relative luminance, Rec. 709 coefficients.
			brightness := (0.2126*r + 0.7152*g + 0.0722*b) / 255.0
			adjusted := clamp((brightness-0.5)*contrast+0.5, 0, 1)

			idx := int(math.Round((1 - adjusted) * last))
			cells[y*geom.Columns+x] = Cell{
				Glyph:      glyphs[idx],
				Color:      blend(opts.Scheme.Accent, opts.Scheme.Foreground, adjusted),
				Brightness: adjusted,
			}
		}
	}

	return &Frame{
		Columns:      geom.Columns,
		Rows:         geom.Rows,
		CharWidthPx:  geom.CharWidthPx,
		CharHeightPx: geom.CharHeightPx,
		Cells:        cells,
	}, nil
}

// blend linearly interpolates from a to b; mix 0 yields a, mix 1 yields b.
func blend(a, b color.NRGBA, mix float64) color.NRGBA {
	return color.NRGBA{
		R: lerpChannel(a.R, b.R, mix),
		G: lerpChannel(a.G, b.G, mix),
		B: lerpChannel(a.B, b.B, mix),
		A: 0xff,
	}
}

func lerpChannel(a, b uint8, mix float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*mix))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
