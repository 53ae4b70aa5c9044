// Package render draws rasterized ASCII frames onto pixel canvases for
// export encoding.
//
// Glyphs are placed at fixed monospace cell positions and drawn grouped by
// color to minimize style switches; final pixel output is order-independent
// since cells do not overlap. An optional watermark is stamped bottom-right
// after the glyph pass.
package render
