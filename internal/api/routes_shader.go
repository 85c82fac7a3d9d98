package api

import (
	"net/http"
	"strings"

	"github.com/smeltergo/compositor/internal/ids"
)

type shaderRegisterWire struct {
	Source string `json:"source"`
}

// RegisterShader registers POST /api/shader/{id}/register.
func RegisterShader(mux *http.ServeMux, d Deps) {
	mux.HandleFunc("/api/shader/", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		tail := strings.TrimPrefix(r.URL.Path, "/api/shader/")
		parts := strings.SplitN(tail, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] != "register" {
			http.Error(w, "invalid path — expected /api/shader/{id}/register", http.StatusBadRequest)
			return
		}
		id := ids.RendererId(parts[0])

		var req shaderRegisterWire
		if decodeJSON(w, r, &req) != nil {
			return
		}
		if err := d.Pipeline.RegisterShader(id, req.Source); err != nil {
			writeRegistrationError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "registered"})
	})
}
