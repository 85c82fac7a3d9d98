package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/smeltergo/compositor/internal/glue"
	"github.com/smeltergo/compositor/internal/ids"
	"github.com/smeltergo/compositor/internal/mixer"
	"github.com/smeltergo/compositor/internal/pipeline"
	"github.com/smeltergo/compositor/internal/scene"
)

type resolutionWire struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type inputConfigWire struct {
	InputId ids.InputId `json:"input_id"`
	Volume  float32     `json:"volume"`
}

type videoOutputWire struct {
	Resolution resolutionWire `json:"resolution"`
	Encoder    string         `json:"encoder"`
	Initial    struct {
		Root json.RawMessage `json:"root"`
	} `json:"initial"`
}

type audioOutputWire struct {
	Initial struct {
		Inputs []inputConfigWire `json:"inputs"`
	} `json:"initial"`
	Channels string `json:"channels"`
	Encoder  string `json:"encoder"`
}

// outputRegisterWire mirrors spec.md §6's
// POST /api/output/{id}/register body.
type outputRegisterWire struct {
	Type  string           `json:"type"`
	Port  int              `json:"port"`
	IP    string           `json:"ip"`
	Video *videoOutputWire `json:"video,omitempty"`
	Audio *audioOutputWire `json:"audio,omitempty"`
}

// outputUpdateWire mirrors POST /api/output/{id}/update.
type outputUpdateWire struct {
	Video *struct {
		Root        json.RawMessage                 `json:"root"`
		Transitions map[string]scene.TransitionWire `json:"transitions,omitempty"`
	} `json:"video,omitempty"`
	Audio *struct {
		Inputs []inputConfigWire `json:"inputs"`
	} `json:"audio,omitempty"`
	ScheduleTimeMs *int64 `json:"schedule_time_ms,omitempty"`
}

type outputUnregisterWire struct {
	ScheduleTimeMs *int64 `json:"schedule_time_ms,omitempty"`
}

func decodeChannels(s string) mixer.Channels {
	if s == "mono" {
		return mixer.ChannelsMono
	}
	return mixer.ChannelsStereo
}

func decodeInputConfigs(in []inputConfigWire) []mixer.InputConfig {
	out := make([]mixer.InputConfig, 0, len(in))
	for _, w := range in {
		out = append(out, mixer.InputConfig{InputId: w.InputId, Volume: w.Volume})
	}
	return out
}

// RegisterOutput registers /api/output/{id}/register, .../update, and
// .../unregister, grounded on the teacher's TrimPrefix-based path
// parsing (internal/viewer/routes/call.go).
func RegisterOutput(mux *http.ServeMux, d Deps) {
	mux.HandleFunc("/api/output/", d.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		tail := strings.TrimPrefix(r.URL.Path, "/api/output/")
		parts := strings.SplitN(tail, "/", 2)
		if len(parts) != 2 || parts[0] == "" {
			http.Error(w, "invalid path — expected /api/output/{id}/register, .../update, or .../unregister", http.StatusBadRequest)
			return
		}
		id, action := ids.OutputId(parts[0]), parts[1]

		switch action {
		case "register":
			handleOutputRegister(w, r, d, id)
		case "update":
			handleOutputUpdate(w, r, d, id)
		case "unregister":
			handleOutputUnregister(w, r, d, id)
		default:
			http.Error(w, "unknown action: "+action, http.StatusBadRequest)
		}
	}))
}

func handleOutputRegister(w http.ResponseWriter, r *http.Request, d Deps, id ids.OutputId) {
	var req outputRegisterWire
	if decodeJSON(w, r, &req) != nil {
		return
	}

	spec := pipeline.OutputSpec{Type: req.Type, Port: req.Port, IP: req.IP}

	if req.Video != nil {
		root, err := scene.DecodeComponent(req.Video.Initial.Root)
		if err != nil {
			writeRegistrationError(w, err)
			return
		}
		spec.Video = &pipeline.VideoOutputSpec{
			Width:       req.Video.Resolution.Width,
			Height:      req.Video.Resolution.Height,
			Encoder:     glue.Codec(req.Video.Encoder),
			InitialRoot: root,
		}
	}
	if req.Audio != nil {
		spec.Audio = &pipeline.AudioOutputSpec{
			InitialInputs: decodeInputConfigs(req.Audio.Initial.Inputs),
			Channels:      decodeChannels(req.Audio.Channels),
			Encoder:       glue.Codec(req.Audio.Encoder),
		}
	}

	if err := d.Pipeline.RegisterOutput(id, spec); err != nil {
		writeRegistrationError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "registered"})
}

func handleOutputUpdate(w http.ResponseWriter, r *http.Request, d Deps, id ids.OutputId) {
	var req outputUpdateWire
	if decodeJSON(w, r, &req) != nil {
		return
	}

	var update pipeline.OutputUpdateSpec
	if req.Video != nil {
		root, err := scene.DecodeComponent(req.Video.Root)
		if err != nil {
			writeRegistrationError(w, err)
			return
		}
		update.VideoRoot = root
		update.DeclaredTrans = scene.DecodeTransitions(req.Video.Transitions)
	}
	if req.Audio != nil {
		update.AudioInputs = decodeInputConfigs(req.Audio.Inputs)
	}
	update.ScheduleTimeMs = req.ScheduleTimeMs

	if err := d.Pipeline.UpdateOutput(id, update); err != nil {
		writeRegistrationError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "updated"})
}

func handleOutputUnregister(w http.ResponseWriter, r *http.Request, d Deps, id ids.OutputId) {
	var req outputUnregisterWire
	if decodeJSON(w, r, &req) != nil {
		return
	}
	if err := d.Pipeline.UnregisterOutput(id, req.ScheduleTimeMs); err != nil {
		writeRegistrationError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "unregistered"})
}
