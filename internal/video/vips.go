package video

import (
	"sync"

	"ascii-theater/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitMutex sync.Mutex
	vipsAvailable bool
)

// InitVips initializes libvips for decode-time frame shrinking.
// Call once at startup; safe to skip entirely, decode falls back to the
// standard library.
func InitVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsAvailable {
		return
	}

	// Bridge vips logging into ours, keeping only warnings and errors at
	// normal levels.
	vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
		switch {
		case level >= vips.LogLevelError:
			logging.Error("[%s] %s", domain, msg)
		case level == vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}, vips.LogLevelWarning)

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsAvailable = true
	logging.Info("libvips initialized (version: %s)", vips.Version)
}

// ShutdownVips releases libvips resources.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsAvailable {
		vips.Shutdown()
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable reports whether the libvips fast path is usable.
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}
