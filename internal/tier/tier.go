package tier

// Entitlement identifies a policy bucket.
type Entitlement string

const (
	// Free is the default entitlement for unknown or anonymous users.
	Free Entitlement = "free"
	// Premium removes the watermark and raises the frame budget.
	Premium Entitlement = "premium"
)

// Config is the resource policy for one entitlement level.
type Config struct {
	// FrameRate is the export sampling rate in frames per second.
	FrameRate int
	// MinCharPixel and MaxCharPixel bound the user-chosen character size.
	MinCharPixel int
	MaxCharPixel int
	// MaxFrames caps the total number of sampled frames per export,
	// bounding job duration on long sources.
	MaxFrames int
	// WatermarkText is stamped bottom-right on exported frames.
	// Empty means no watermark.
	WatermarkText string
}

var configs = map[Entitlement]Config{
	Free: {
		FrameRate:     10,
		MinCharPixel:  6,
		MaxCharPixel:  16,
		MaxFrames:     300,
		WatermarkText: "ascii-theater",
	},
	Premium: {
		FrameRate:     24,
		MinCharPixel:  4,
		MaxCharPixel:  24,
		MaxFrames:     1440,
		WatermarkText: "",
	},
}

// ForEntitlement returns the policy for the given entitlement level.
// Unrecognized levels fall back to the free policy.
func ForEntitlement(e Entitlement) Config {
	if c, ok := configs[e]; ok {
		return c
	}
	return configs[Free]
}

// ClampCharPixel constrains a requested character pixel size to the
// bounds of this policy.
func (c Config) ClampCharPixel(size float64) float64 {
	if size < float64(c.MinCharPixel) {
		return float64(c.MinCharPixel)
	}
	if size > float64(c.MaxCharPixel) {
		return float64(c.MaxCharPixel)
	}
	return size
}

// Watermarked reports whether exports under this policy carry a watermark.
func (c Config) Watermarked() bool {
	return c.WatermarkText != ""
}
