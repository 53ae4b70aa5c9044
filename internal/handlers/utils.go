package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"ascii-theater/internal/ascii"
	"ascii-theater/internal/logging"
	"ascii-theater/internal/tier"
)

// errPathOutsideLibrary rejects traversal out of the video directory.
var errPathOutsideLibrary = errors.New("path escapes the video library")

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// resolveVideoPath maps a request-supplied relative path to an absolute
// path inside the video library, rejecting traversal.
func resolveVideoPath(videoDir, requested string) (string, error) {
	cleaned := filepath.Clean("/" + requested)
	full := filepath.Join(videoDir, cleaned)

	if full != videoDir && !strings.HasPrefix(full, videoDir+string(filepath.Separator)) {
		return "", errPathOutsideLibrary
	}
	return full, nil
}

// queryFloat parses a float query parameter, falling back to def when the
// parameter is absent or malformed.
func queryFloat(r *http.Request, key string, def float64) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// entitlementFor resolves the caller's tier from the account header.
func (h *Handlers) entitlementFor(ctx context.Context, r *http.Request) (string, tier.Config) {
	key := r.Header.Get(accountHeader)
	if h.store == nil {
		return key, tier.ForEntitlement(tier.Free)
	}
	return key, tier.ForEntitlement(h.store.Lookup(ctx, key))
}

// styleParams are the rasterization settings shared by the render,
// preview, and export requests.
type styleParams struct {
	Palette   string  `json:"palette"`
	Scheme    string  `json:"scheme"`
	Contrast  float64 `json:"contrast"`
	CharPixel float64 `json:"charPixel"`
	Viewport  int     `json:"viewportHeight"`
}

func (p styleParams) palette() ascii.Palette {
	return ascii.PaletteByName(p.Palette)
}

func (p styleParams) scheme() ascii.Scheme {
	return ascii.SchemeByName(p.Scheme)
}

func (p styleParams) contrast() float64 {
	if p.Contrast == 0 {
		return 1
	}
	return p.Contrast
}

// styleFromQuery reads style settings from query parameters, used by the
// GET preview route.
func styleFromQuery(r *http.Request) styleParams {
	return styleParams{
		Palette:   r.URL.Query().Get("palette"),
		Scheme:    r.URL.Query().Get("scheme"),
		Contrast:  queryFloat(r, "contrast", 1),
		CharPixel: queryFloat(r, "charPixel", 10),
		Viewport:  queryInt(r, "viewportHeight", 0),
	}
}
