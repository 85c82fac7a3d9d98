package api

import (
	"net/http"
	"strings"

	"github.com/smeltergo/compositor/internal/frame"
	"github.com/smeltergo/compositor/internal/ids"
)

// imageRegisterWire mirrors spec.md §6's
// POST /api/image/{id}/register body. Only Path assets are decoded (via
// ImageAssetStore); URL fetching isn't implemented — a URL-only request
// still reserves the renderer slot at Resolution but no pixels are ever
// produced for it.
type imageRegisterWire struct {
	AssetType  string          `json:"asset_type"`
	URL        string          `json:"url,omitempty"`
	Path       string          `json:"path,omitempty"`
	Resolution *resolutionWire `json:"resolution,omitempty"`
}

// RegisterImage registers POST /api/image/{id}/register.
func RegisterImage(mux *http.ServeMux, d Deps) {
	mux.HandleFunc("/api/image/", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		tail := strings.TrimPrefix(r.URL.Path, "/api/image/")
		parts := strings.SplitN(tail, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] != "register" {
			http.Error(w, "invalid path — expected /api/image/{id}/register", http.StatusBadRequest)
			return
		}
		id := ids.RendererId(parts[0])

		var req imageRegisterWire
		if decodeJSON(w, r, &req) != nil {
			return
		}

		var res frame.Resolution
		if req.Resolution != nil {
			res = frame.Resolution{Width: req.Resolution.Width, Height: req.Resolution.Height}
		}
		if err := d.Pipeline.RegisterImage(id, res); err != nil {
			writeRegistrationError(w, err)
			return
		}
		if req.Path != "" && d.ImageAssets != nil {
			if err := d.ImageAssets.Register(id, req.Path); err != nil {
				writeRegistrationError(w, err)
				return
			}
		}
		writeJSON(w, map[string]string{"status": "registered"})
	})
}
