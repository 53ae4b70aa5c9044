package ascii

import (
	"image"
	"image/color"
	"math"
	"testing"

	"ascii-theater/internal/grid"
)

func testGeometry(cols, rows int) grid.Geometry {
	return grid.Geometry{Columns: cols, Rows: rows, CharWidthPx: 4.96, CharHeightPx: 9.6}
}

// uniformFrame returns a solid-color frame.
func uniformFrame(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = 0xff
	}
	return img
}

func TestRasterizeNilFrame(t *testing.T) {
	s := NewSurface()

	_, err := s.Rasterize(nil, testGeometry(16, 12), Options{Contrast: 1})
	if err != ErrNoFrame {
		t.Errorf("Expected ErrNoFrame, got %v", err)
	}

	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	_, err = s.Rasterize(empty, testGeometry(16, 12), Options{Contrast: 1})
	if err != ErrNoFrame {
		t.Errorf("Expected ErrNoFrame for empty frame, got %v", err)
	}
}

func TestRasterizeDimensions(t *testing.T) {
	s := NewSurface()
	geom := testGeometry(40, 20)

	frame, err := s.Rasterize(uniformFrame(640, 360, color.NRGBA{R: 128, G: 128, B: 128}), geom, Options{Contrast: 1})
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}

	if frame.Columns != 40 || frame.Rows != 20 {
		t.Errorf("Expected 40x20 frame, got %dx%d", frame.Columns, frame.Rows)
	}
	if len(frame.Cells) != 800 {
		t.Errorf("Expected 800 cells, got %d", len(frame.Cells))
	}
	if len(frame.Lines()) != 20 {
		t.Errorf("Expected 20 lines, got %d", len(frame.Lines()))
	}
}

func TestRasterizeDeterministic(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 64, 36))
	for i := range src.Pix {
		src.Pix[i] = byte(i * 31) // arbitrary but fixed pattern
	}

	opts := Options{Palette: PaletteClassic, Scheme: SchemeMatrix, Contrast: 1.3}
	geom := testGeometry(32, 18)

	a, err := NewSurface().Rasterize(src, geom, opts)
	if err != nil {
		t.Fatalf("first Rasterize failed: %v", err)
	}
	b, err := NewSurface().Rasterize(src, geom, opts)
	if err != nil {
		t.Fatalf("second Rasterize failed: %v", err)
	}

	if len(a.Cells) != len(b.Cells) {
		t.Fatalf("cell count mismatch: %d vs %d", len(a.Cells), len(b.Cells))
	}
	for i := range a.Cells {
		if a.Cells[i] != b.Cells[i] {
			t.Fatalf("cell %d differs: %+v vs %+v", i, a.Cells[i], b.Cells[i])
		}
	}
}

func TestContrastClamping(t *testing.T) {
	src := uniformFrame(64, 36, color.NRGBA{R: 200, G: 100, B: 50})
	geom := testGeometry(16, 12)

	tests := []struct {
		name       string
		in, capped float64
	}{
		{"AboveMax", 5.0, MaxContrast},
		{"BelowMin", -1.0, MinContrast},
		{"Zero", 0, MinContrast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSurface().Rasterize(src, geom, Options{Contrast: tt.in})
			if err != nil {
				t.Fatalf("Rasterize failed: %v", err)
			}
			want, err := NewSurface().Rasterize(src, geom, Options{Contrast: tt.capped})
			if err != nil {
				t.Fatalf("Rasterize failed: %v", err)
			}

			for i := range got.Cells {
				if got.Cells[i] != want.Cells[i] {
					t.Fatalf("contrast %v should behave like %v; cell %d differs", tt.in, tt.capped, i)
				}
			}
		})
	}
}

func TestBrightnessMonotonicity(t *testing.T) {
	geom := testGeometry(16, 12)
	opts := Options{Contrast: 1.7}

	prev := -1.0
	for lum := 0; lum <= 255; lum += 5 {
		v := uint8(lum)
		frame, err := NewSurface().Rasterize(uniformFrame(32, 24, color.NRGBA{R: v, G: v, B: v}), geom, opts)
		if err != nil {
			t.Fatalf("Rasterize failed at luminance %d: %v", lum, err)
		}

		adjusted := frame.Cells[0].Brightness
		if adjusted < prev {
			t.Fatalf("adjusted brightness decreased at luminance %d: %f < %f", lum, adjusted, prev)
		}
		prev = adjusted
	}
}

func TestGlyphPolarity(t *testing.T) {
	geom := testGeometry(16, 12)
	opts := Options{Palette: PaletteClassic, Scheme: SchemeMono, Contrast: 1}

	black, err := NewSurface().Rasterize(uniformFrame(32, 24, color.NRGBA{}), geom, opts)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	white, err := NewSurface().Rasterize(uniformFrame(32, 24, color.NRGBA{R: 255, G: 255, B: 255}), geom, opts)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}

	// Dense-to-sparse palette: bright cells map to index 0, dark to the end.
	if got := white.Cells[0].Glyph; got != PaletteClassic.Glyphs[0] {
		t.Errorf("Expected white to map to %q, got %q", PaletteClassic.Glyphs[0], got)
	}
	last := PaletteClassic.Glyphs[len(PaletteClassic.Glyphs)-1]
	if got := black.Cells[0].Glyph; got != last {
		t.Errorf("Expected black to map to %q, got %q", last, got)
	}
}

func TestColorBlend(t *testing.T) {
	geom := testGeometry(16, 12)
	opts := Options{Scheme: SchemeMono, Contrast: 1}

	black, err := NewSurface().Rasterize(uniformFrame(32, 24, color.NRGBA{}), geom, opts)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	white, err := NewSurface().Rasterize(uniformFrame(32, 24, color.NRGBA{R: 255, G: 255, B: 255}), geom, opts)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}

	if black.Cells[0].Color != SchemeMono.Accent {
		t.Errorf("Expected dark cell to carry accent color, got %+v", black.Cells[0].Color)
	}
	if white.Cells[0].Color != SchemeMono.Foreground {
		t.Errorf("Expected bright cell to carry foreground color, got %+v", white.Cells[0].Color)
	}
}

func TestPaletteByName(t *testing.T) {
	if p := PaletteByName("blocks"); p.Name != "blocks" {
		t.Errorf("Expected blocks palette, got %s", p.Name)
	}
	if p := PaletteByName("nope"); p.Name != PaletteClassic.Name {
		t.Errorf("Expected fallback to classic, got %s", p.Name)
	}
	if p := PaletteFromGlyphs(""); p.Name != PaletteClassic.Name {
		t.Errorf("Expected empty glyphs to fall back to classic, got %s", p.Name)
	}
	if p := PaletteFromGlyphs("@. "); string(p.Glyphs) != "@. " {
		t.Errorf("Expected custom glyph order preserved, got %q", string(p.Glyphs))
	}
}

func TestSchemeByName(t *testing.T) {
	if s := SchemeByName("amber"); s.Name != "amber" {
		t.Errorf("Expected amber scheme, got %s", s.Name)
	}
	if s := SchemeByName(""); s.Name != SchemeDefault.Name {
		t.Errorf("Expected fallback to default, got %s", s.Name)
	}
}

func TestAdjustedBrightnessFormula(t *testing.T) {
	// Mid gray at contrast 2.0 stays mid gray.
	geom := testGeometry(16, 12)
	v := uint8(127)
	frame, err := NewSurface().Rasterize(uniformFrame(32, 24, color.NRGBA{R: v, G: v, B: v}), geom, Options{Contrast: 2})
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}

	want := (127.0/255.0-0.5)*2 + 0.5
	if math.Abs(frame.Cells[0].Brightness-want) > 1e-9 {
		t.Errorf("Expected adjusted brightness %f, got %f", want, frame.Cells[0].Brightness)
	}
}
