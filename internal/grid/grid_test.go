package grid

import (
	"math"
	"testing"
)

func TestResolveFloors(t *testing.T) {
	tests := []struct {
		name           string
		srcW, srcH     int
		viewportH      int
		charPixel      float64
	}{
		{"TinySource", 2, 2, 100, 8},
		{"ZeroSource", 0, 0, 480, 8},
		{"NegativeSource", -10, -5, 480, 8},
		{"TinyViewport", 1920, 1080, 10, 8},
		{"HugeCharSize", 640, 360, 480, 200},
		{"NormalHD", 1920, 1080, 720, 8},
		{"Portrait", 360, 640, 720, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Resolve(tt.srcW, tt.srcH, tt.viewportH, tt.charPixel)

			if g.Columns < MinColumns {
				t.Errorf("Expected Columns >= %d, got %d", MinColumns, g.Columns)
			}
			if g.Rows < MinRows {
				t.Errorf("Expected Rows >= %d, got %d", MinRows, g.Rows)
			}
			if g.CharWidthPx < 1 {
				t.Errorf("Expected CharWidthPx >= 1, got %f", g.CharWidthPx)
			}
		})
	}
}

func TestResolveGlyphAspect(t *testing.T) {
	g := Resolve(1920, 1080, 720, 10)

	if math.Abs(g.CharWidthPx-6.2) > 1e-9 {
		t.Errorf("Expected CharWidthPx=6.2 for 10px chars, got %f", g.CharWidthPx)
	}
	if math.Abs(g.CharHeightPx-12.0) > 1e-9 {
		t.Errorf("Expected CharHeightPx=12.0 for 10px chars, got %f", g.CharHeightPx)
	}
}

func TestResolveRowsFromViewport(t *testing.T) {
	// 720px viewport, 12px cell height -> 60 rows.
	g := Resolve(1920, 1080, 720, 10)
	if g.Rows != 60 {
		t.Errorf("Expected 60 rows, got %d", g.Rows)
	}

	// Columns follow rows, aspect and the cell aspect correction.
	wantCols := int(math.Floor(60 * (1920.0 / 1080.0) * (12.0 / 6.2)))
	if g.Columns != wantCols {
		t.Errorf("Expected %d columns, got %d", wantCols, g.Columns)
	}
}

func TestResolveWiderSourceMoreColumns(t *testing.T) {
	narrow := Resolve(640, 480, 480, 8)
	wide := Resolve(1920, 480, 480, 8)

	if wide.Columns <= narrow.Columns {
		t.Errorf("Expected wider source to resolve more columns: %d vs %d",
			wide.Columns, narrow.Columns)
	}
	if wide.Rows != narrow.Rows {
		t.Errorf("Expected same rows for same viewport, got %d vs %d",
			wide.Rows, narrow.Rows)
	}
}

func TestResolveDeterministic(t *testing.T) {
	a := Resolve(1280, 720, 600, 9)
	b := Resolve(1280, 720, 600, 9)

	if a != b {
		t.Errorf("Expected identical geometry for identical inputs: %+v vs %+v", a, b)
	}
}
