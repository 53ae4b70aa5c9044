package ascii

// Palette is an ordered sequence of glyphs spanning a density range.
// Index 0 is the visually densest glyph; the last index is the sparsest.
// The ordering is part of the preset contract and must be preserved:
// glyph selection maps brighter cells to lower indices, so with a
// dense-to-sparse ordering bright areas read as heavy glyphs.
type Palette struct {
	Name   string
	Glyphs []rune
}

// Shipped palette presets. Orderings are verbatim; do not re-derive them.
var (
	// PaletteClassic is the default dense-to-sparse symbol ramp.
	PaletteClassic = Palette{Name: "classic", Glyphs: []rune("@$%#*+=-:. ")}

	// PaletteBlocks uses unicode block shades for a pixel-art look.
	PaletteBlocks = Palette{Name: "blocks", Glyphs: []rune("█▓▒░ ")}

	// PaletteDense is a long ramp for large character grids.
	PaletteDense = Palette{Name: "dense", Glyphs: []rune("$@B%8&WM#*oahkbdpqwmZO0QLCJUYXzcvunxrjft/\\|()1{}[]?-_+~<>i!lI;:,\"^`'. ")}

	// PaletteMinimal is a short ramp for very small grids.
	PaletteMinimal = Palette{Name: "minimal", Glyphs: []rune("@#+-. ")}
)

var palettes = map[string]Palette{
	PaletteClassic.Name: PaletteClassic,
	PaletteBlocks.Name:  PaletteBlocks,
	PaletteDense.Name:   PaletteDense,
	PaletteMinimal.Name: PaletteMinimal,
}

// PaletteByName returns a shipped preset, falling back to the classic ramp
// for unknown names.
func PaletteByName(name string) Palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return PaletteClassic
}

// PaletteFromGlyphs builds a palette from a caller-supplied glyph string,
// preserving its order. Empty input falls back to the classic ramp.
func PaletteFromGlyphs(glyphs string) Palette {
	if glyphs == "" {
		return PaletteClassic
	}
	return Palette{Name: "custom", Glyphs: []rune(glyphs)}
}
