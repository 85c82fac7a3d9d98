package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/smeltergo/compositor/internal/glue"
	"github.com/smeltergo/compositor/internal/ids"
	"github.com/smeltergo/compositor/internal/pipeline"
)

// inputRegisterWire mirrors spec.md §6's
// POST /api/input/{id}/register body. Video/Audio are presence-only
// markers (spec.md doesn't attach per-track config at registration time)
// so they decode as raw JSON and are only checked for non-emptiness.
type inputRegisterWire struct {
	Type              string          `json:"type"`
	TransportProtocol string          `json:"transport_protocol"`
	Port              int             `json:"port"`
	Video             json.RawMessage `json:"video,omitempty"`
	Audio             json.RawMessage `json:"audio,omitempty"`
	Required          bool            `json:"required,omitempty"`
	OffsetMs          int64           `json:"offset_ms,omitempty"`
}

// RegisterInput registers /api/input/{id}/register and
// /api/input/{id}/unregister, grounded on the teacher's
// internal/viewer/routes/call.go TrimPrefix-based path parsing.
func RegisterInput(mux *http.ServeMux, d Deps) {
	mux.HandleFunc("/api/input/", d.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		tail := strings.TrimPrefix(r.URL.Path, "/api/input/")
		parts := strings.SplitN(tail, "/", 2)
		if len(parts) != 2 || parts[0] == "" {
			http.Error(w, "invalid path — expected /api/input/{id}/register or .../unregister", http.StatusBadRequest)
			return
		}
		id, action := ids.InputId(parts[0]), parts[1]

		switch action {
		case "register":
			var req inputRegisterWire
			if decodeJSON(w, r, &req) != nil {
				return
			}
			spec := pipeline.InputSpec{
				Type:              req.Type,
				TransportProtocol: glue.TransportProtocol(req.TransportProtocol),
				Port:              req.Port,
				HasVideo:          len(req.Video) > 0,
				HasAudio:          len(req.Audio) > 0,
				Required:          req.Required,
				OffsetMs:          req.OffsetMs,
			}
			if err := d.Pipeline.RegisterInput(id, spec); err != nil {
				writeRegistrationError(w, err)
				return
			}
			writeJSON(w, map[string]string{"status": "registered"})

		case "unregister":
			if err := d.Pipeline.UnregisterInput(id); err != nil {
				writeRegistrationError(w, err)
				return
			}
			writeJSON(w, map[string]string{"status": "unregistered"})

		default:
			http.Error(w, "unknown action: "+action, http.StatusBadRequest)
		}
	}))
}
