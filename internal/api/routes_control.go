package api

import "net/http"

// RegisterControl registers POST /api/start and GET /status.
func RegisterControl(mux *http.ServeMux, d Deps) {
	handlePostAction(mux, "/api/start", func(w http.ResponseWriter, r *http.Request) {
		if err := d.Pipeline.Start(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"status": "started"})
	})

	handleGet(mux, "/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Pipeline.Status())
	})
}
