// Package ascii converts decoded video frames into character grids.
//
// A Surface is a reusable off-screen sampling buffer: the source frame is
// scaled down to grid resolution, each pixel's relative luminance picks a
// glyph from an ordered palette, and the cell color is blended between the
// scheme's accent and foreground colors. Rasterization is deterministic:
// identical frame pixels and style parameters always produce identical
// output.
//
// A Surface supports at most one rasterization at a time; preview and export
// must own separate instances.
package ascii
