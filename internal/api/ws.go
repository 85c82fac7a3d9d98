package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smeltergo/compositor/internal/events"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const wsPingInterval = 30 * time.Second

// RegisterWS registers GET /ws: each connection subscribes to the
// pipeline's event emitter and receives one JSON frame per broadcast
// event, `{"type": KIND, ...}` per spec.md §6. Grounded on the teacher's
// internal/viewer/routes/call.go WebSocket upgrade and the SSE fan-out
// shape next to it, adapted from text frames to a persistent JSON socket.
func RegisterWS(mux *http.ServeMux, d Deps) {
	handleGet(mux, "/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("API: ws upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		evtCh, cancel := d.Pipeline.Events().Subscribe()
		defer cancel()

		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()

		for {
			select {
			case evt, ok := <-evtCh:
				if !ok {
					return
				}
				if err := conn.WriteJSON(wsEventFrame(evt)); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	})
}

func wsEventFrame(evt events.Event) map[string]any {
	frame := map[string]any{"type": string(evt.Kind)}
	if evt.InputId != "" {
		frame["input_id"] = evt.InputId
	}
	if evt.OutputId != "" {
		frame["output_id"] = evt.OutputId
	}
	frame["timestamp"] = evt.Timestamp
	return frame
}
