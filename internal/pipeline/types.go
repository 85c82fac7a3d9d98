// Package pipeline wires InputState/FrameQueue/AudioQueue/Scheduler →
// SceneState → LayoutEngine → AudioMixer → glue outputs together into one
// running compositor instance. Grounded on
// original_source/compositor_pipeline/src/pipeline.rs's Pipeline::start
// render-thread loop, rebuilt as a ticker-driven goroutine.
package pipeline

import (
	"time"

	"github.com/smeltergo/compositor/internal/glue"
	"github.com/smeltergo/compositor/internal/ids"
	"github.com/smeltergo/compositor/internal/mixer"
	"github.com/smeltergo/compositor/internal/scene"
)

// InputSpec mirrors spec.md §6's POST /api/input/{id}/register body.
type InputSpec struct {
	Type              string
	TransportProtocol glue.TransportProtocol
	Port              int
	HasVideo          bool
	HasAudio          bool
	Required          bool
	OffsetMs          int64
}

// VideoOutputSpec mirrors the `video` field of POST /api/output/{id}/register.
type VideoOutputSpec struct {
	Width, Height int
	Encoder       glue.Codec
	InitialRoot   scene.Component
}

// AudioOutputSpec mirrors the `audio` field of the same endpoint.
type AudioOutputSpec struct {
	InitialInputs []mixer.InputConfig
	Channels      mixer.Channels
	Encoder       glue.Codec
	Strategy      mixer.Strategy
}

// OutputSpec mirrors POST /api/output/{id}/register's full body.
type OutputSpec struct {
	Type  string
	Port  int
	IP    string
	Video *VideoOutputSpec
	Audio *AudioOutputSpec
}

// OutputUpdateSpec mirrors POST /api/output/{id}/update.
type OutputUpdateSpec struct {
	VideoRoot       scene.Component
	DeclaredTrans   map[ids.ComponentId]scene.Transition
	AudioInputs     []mixer.InputConfig
	ScheduleTimeMs  *int64
}

// RegistrationError is returned for spec.md §7's "Registration error"
// taxonomy (duplicate id, missing renderer, invalid resolution, invalid
// configuration combination) — surfaced synchronously as HTTP 400 by the
// caller (internal/api).
type RegistrationError struct {
	Reason string
}

func (e *RegistrationError) Error() string { return "registration error: " + e.Reason }

// StatusSnapshot is returned by GET /status.
type StatusSnapshot struct {
	Running    bool
	Inputs     []ids.InputId
	Outputs    []ids.OutputId
	TickCount  int64
	StartedAt  time.Time
}
