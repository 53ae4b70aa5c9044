// Package grid derives character-grid geometry from source video dimensions
// and a character pixel size.
//
// The resolver is a pure function with floor values (16 columns, 12 rows)
// that keep the grid usable on tiny or malformed sources.
package grid
