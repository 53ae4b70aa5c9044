package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"ascii-theater/internal/ascii"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Cell footprint of the export face. basicfont.Face7x13 advances 7px per
// glyph with a 13px line height; canvas dimensions derive from these.
const (
	CellWidth  = 7
	CellHeight = 13
)

var background = color.NRGBA{R: 0x0a, G: 0x0a, B: 0x0a, A: 0xff}

// Canvas is a reusable export-resolution drawing surface. The pixel buffer
// is reallocated only when the grid size changes. Not safe for concurrent
// use; each export job owns its own Canvas.
type Canvas struct {
	img  *image.NRGBA
	face font.Face
}

// NewCanvas returns an empty canvas using the built-in monospace face.
func NewCanvas() *Canvas {
	return &Canvas{face: basicfont.Face7x13}
}

// Draw renders frame onto the canvas, grouping glyphs by color, and stamps
// watermark bottom-right when non-empty. It returns the backing image,
// which remains valid until the next Draw call.
func (c *Canvas) Draw(frame *ascii.Frame, watermark string) *image.NRGBA {
	w := frame.Columns * CellWidth
	h := frame.Rows * CellHeight

	if c.img == nil || c.img.Rect.Dx() != w || c.img.Rect.Dy() != h {
		c.img = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	draw.Draw(c.img, c.img.Rect, image.NewUniform(background), image.Point{}, draw.Src)

	// Group cell positions by color so each color is drawn in one pass.
	groups := make(map[color.NRGBA][]int)
	for i, cell := range frame.Cells {
		if cell.Glyph == ' ' {
			continue
		}
		groups[cell.Color] = append(groups[cell.Color], i)
	}

	ascent := c.face.Metrics().Ascent.Ceil()
	for col, indices := range groups {
		d := font.Drawer{
			Dst:  c.img,
			Src:  image.NewUniform(col),
			Face: c.face,
		}
		for _, i := range indices {
			x := (i % frame.Columns) * CellWidth
			y := (i/frame.Columns)*CellHeight + ascent
			d.Dot = fixed.P(x, y)
			d.DrawString(string(frame.Cells[i].Glyph))
		}
	}

	if watermark != "" {
		c.drawWatermark(watermark)
	}

	return c.img
}

// drawWatermark stamps text in the bottom-right corner over whatever glyphs
// are already there.
func (c *Canvas) drawWatermark(text string) {
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}),
		Face: c.face,
	}
	width := d.MeasureString(text).Ceil()
	x := c.img.Rect.Dx() - width - CellWidth
	if x < 0 {
		x = 0
	}
	y := c.img.Rect.Dy() - c.face.Metrics().Descent.Ceil() - 2
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}

// EncodePNG encodes frame as a PNG still suitable for encoder submission.
func (c *Canvas) EncodePNG(frame *ascii.Frame, watermark string) ([]byte, error) {
	img := c.Draw(frame, watermark)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
