package ascii

import "image/color"

// Scheme is a two-color style: cell colors are blended from Accent (dark
// cells) toward Foreground (bright cells).
type Scheme struct {
	Name       string
	Accent     color.NRGBA
	Foreground color.NRGBA
}

// Shipped scheme presets.
var (
	SchemeDefault = Scheme{
		Name:       "default",
		Accent:     color.NRGBA{R: 0x0e, G: 0x7a, B: 0x8f, A: 0xff},
		Foreground: color.NRGBA{R: 0xf2, G: 0xf2, B: 0xf2, A: 0xff},
	}
	SchemeMatrix = Scheme{
		Name:       "matrix",
		Accent:     color.NRGBA{R: 0x0a, G: 0x3d, B: 0x0a, A: 0xff},
		Foreground: color.NRGBA{R: 0x39, G: 0xff, B: 0x14, A: 0xff},
	}
	SchemeAmber = Scheme{
		Name:       "amber",
		Accent:     color.NRGBA{R: 0x4a, G: 0x2a, B: 0x00, A: 0xff},
		Foreground: color.NRGBA{R: 0xff, G: 0xb0, B: 0x00, A: 0xff},
	}
	SchemeMono = Scheme{
		Name:       "mono",
		Accent:     color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff},
		Foreground: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
)

var schemes = map[string]Scheme{
	SchemeDefault.Name: SchemeDefault,
	SchemeMatrix.Name:  SchemeMatrix,
	SchemeAmber.Name:   SchemeAmber,
	SchemeMono.Name:    SchemeMono,
}

// SchemeByName returns a shipped preset, falling back to the default scheme
// for unknown names.
func SchemeByName(name string) Scheme {
	if s, ok := schemes[name]; ok {
		return s
	}
	return SchemeDefault
}
