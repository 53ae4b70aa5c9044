package handlers

import (
	"io/fs"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
)

// videoExtensions are the container formats the decoder accepts.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
	".m4v":  true,
}

// VideoEntry is one playable file in the library listing.
type VideoEntry struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ListVideos walks the video directory and returns every playable file,
// sorted by relative path.
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	entries := []VideoEntry{}

	root := h.config.VideoDir
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree; skip it rather than failing the listing.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !videoExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		info, infoErr := d.Info()
		var size int64
		if infoErr == nil {
			size = info.Size()
		}
		entries = append(entries, VideoEntry{
			Path: filepath.ToSlash(rel),
			Name: d.Name(),
			Size: size,
		})
		return nil
	})
	if err != nil {
		writeJSONError(w, "failed to list videos", http.StatusInternalServerError)
		return
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"videos": entries,
		"count":  len(entries),
	})
}
