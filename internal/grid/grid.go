package grid

import "math"

const (
	// MinColumns and MinRows are the floor values preventing degenerate
	// grids on tiny or malformed video dimensions.
	MinColumns = 16
	MinRows    = 12

	// defaultAspect approximates a 16:9 source when dimensions are unknown.
	defaultAspect = 16.0 / 9.0

	// Glyph footprint ratios approximating monospace font metrics.
	charWidthRatio  = 0.62
	charHeightRatio = 1.2
)

// Geometry describes a character grid and the pixel footprint of one cell.
type Geometry struct {
	Columns      int     `json:"columns"`
	Rows         int     `json:"rows"`
	CharWidthPx  float64 `json:"charWidthPx"`
	CharHeightPx float64 `json:"charHeightPx"`
}

// Resolve derives grid geometry from the source dimensions, the viewport
// height in pixels, and the chosen character pixel size. Zero or negative
// source dimensions fall back to a 16:9 aspect ratio. The result always
// satisfies Columns >= MinColumns and Rows >= MinRows.
func Resolve(srcWidth, srcHeight, viewportHeight int, charPixel float64) Geometry {
	aspect := defaultAspect
	if srcWidth > 0 && srcHeight > 0 {
		aspect = float64(srcWidth) / float64(srcHeight)
	}

	charWidth := math.Max(1, charPixel*charWidthRatio)
	charHeight := charPixel * charHeightRatio

	rows := MinRows
	if charHeight > 0 {
		if r := int(math.Floor(float64(viewportHeight) / charHeight)); r > rows {
			rows = r
		}
	}

	columns := MinColumns
	if c := int(math.Floor(float64(rows) * aspect * (charHeight / charWidth))); c > columns {
		columns = c
	}

	return Geometry{
		Columns:      columns,
		Rows:         rows,
		CharWidthPx:  charWidth,
		CharHeightPx: charHeight,
	}
}
