package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/smeltergo/compositor/internal/frame"
	"github.com/smeltergo/compositor/internal/geom"
	"github.com/smeltergo/compositor/internal/glue"
	"github.com/smeltergo/compositor/internal/ids"
	"github.com/smeltergo/compositor/internal/layout"
	"github.com/smeltergo/compositor/internal/mixer"
	"github.com/smeltergo/compositor/internal/scene"
)

func testConfig() Config {
	return Config{FramerateNum: 30, FramerateDen: 1, MixingSampleRate: 48000}
}

func f(v float64) *float64 { return &v }

func TestRegisterInputRequiresVideoOrAudio(t *testing.T) {
	p := NewPipeline(testConfig(), nil)
	err := p.RegisterInput("in1", InputSpec{})
	if err == nil {
		t.Fatal("expected registration error for an input with neither video nor audio")
	}
}

func TestRegisterInputDuplicateRejected(t *testing.T) {
	p := NewPipeline(testConfig(), nil)
	spec := InputSpec{HasVideo: true}
	if err := p.RegisterInput("in1", spec); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := p.RegisterInput("in1", spec); err == nil {
		t.Fatal("expected duplicate input registration to be rejected")
	}
}

// fakeTransport is a no-op glue.Transport that records whether it was closed.
type fakeTransport struct {
	closed bool
}

func (t *fakeTransport) ReadPacket(ctx context.Context) ([]byte, error) { return nil, nil }
func (t *fakeTransport) WritePacket(ctx context.Context, payload []byte) error { return nil }
func (t *fakeTransport) Close() error {
	t.closed = true
	return nil
}

// fakeTransportOpener is a glue.TransportOpener that hands out fakeTransports
// without binding any real socket, exercising Pipeline's opener call path in
// isolation from glue.NetTransportOpener.
type fakeTransportOpener struct {
	opened []*fakeTransport
	err    error
}

func (o *fakeTransportOpener) Open(protocol glue.TransportProtocol, port int) (glue.Transport, error) {
	if o.err != nil {
		return nil, o.err
	}
	t := &fakeTransport{}
	o.opened = append(o.opened, t)
	return t, nil
}

func TestRegisterInputOpensTransportWhenOpenerConfigured(t *testing.T) {
	p := NewPipeline(testConfig(), nil)
	opener := &fakeTransportOpener{}
	p.SetTransportOpener(opener)

	spec := InputSpec{HasVideo: true, TransportProtocol: glue.ProtocolRTPUDP, Port: 5000}
	if err := p.RegisterInput("in1", spec); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(opener.opened) != 1 {
		t.Fatalf("expected opener to be called once, got %d", len(opener.opened))
	}

	if err := p.UnregisterInput("in1"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if !opener.opened[0].closed {
		t.Fatal("expected transport to be closed on unregister")
	}
}

func TestRegisterInputFailedTransportOpenRejectsRegistration(t *testing.T) {
	p := NewPipeline(testConfig(), nil)
	opener := &fakeTransportOpener{err: fmt.Errorf("port in use")}
	p.SetTransportOpener(opener)

	spec := InputSpec{HasVideo: true, TransportProtocol: glue.ProtocolRTPUDP, Port: 5000}
	if err := p.RegisterInput("in1", spec); err == nil {
		t.Fatal("expected registration to fail when the transport opener errors")
	}

	p.mu.RLock()
	_, exists := p.inputs["in1"]
	p.mu.RUnlock()
	if exists {
		t.Fatal("input must not be registered when its transport fails to open")
	}
}

func TestRegisterInputWithoutOpenerSkipsTransportWiring(t *testing.T) {
	p := NewPipeline(testConfig(), nil)
	spec := InputSpec{HasVideo: true, TransportProtocol: glue.ProtocolRTPUDP, Port: 5000}
	if err := p.RegisterInput("in1", spec); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := p.UnregisterInput("in1"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
}

func TestRegisterOutputRequiresVideoOrAudio(t *testing.T) {
	p := NewPipeline(testConfig(), nil)
	if err := p.RegisterOutput("out1", OutputSpec{}); err == nil {
		t.Fatal("expected registration error for an output with neither video nor audio")
	}
}

// required_inputs: the scheduler's required-input set must track exactly
// the inputs registered with Required=true, gaining and losing entries as
// inputs come and go.
func TestRequiredInputsTracksRequiredFlag(t *testing.T) {
	p := NewPipeline(testConfig(), nil)
	if err := p.RegisterInput("req1", InputSpec{HasVideo: true, Required: true}); err != nil {
		t.Fatalf("register req1: %v", err)
	}
	if err := p.RegisterInput("opt1", InputSpec{HasVideo: true, Required: false}); err != nil {
		t.Fatalf("register opt1: %v", err)
	}

	p.mu.RLock()
	required := p.requiredInputsLocked()
	p.mu.RUnlock()
	if len(required) != 1 || required[0] != "req1" {
		t.Fatalf("expected only req1 to be required, got %v", required)
	}

	if err := p.UnregisterInput("req1"); err != nil {
		t.Fatalf("unregister req1: %v", err)
	}
	p.mu.RLock()
	required = p.requiredInputsLocked()
	p.mu.RUnlock()
	if len(required) != 0 {
		t.Fatalf("expected no required inputs left, got %v", required)
	}
}

// unregistering: once an input is unregistered its resolution entry is
// gone, so LayoutEngine falls back to the view's background color instead
// of referencing stale texture state.
func TestUnregisterInputFallsBackToBackgroundColor(t *testing.T) {
	p := NewPipeline(testConfig(), nil)
	if err := p.RegisterInput("in1", InputSpec{HasVideo: true}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := p.EnqueueFrame("in1", frame.Frame{Resolution: frame.Resolution{Width: 100, Height: 100}}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	root := scene.InputStream{Id: "c1", InputId: "in1"}
	if err := p.RegisterOutput("out1", OutputSpec{Video: &VideoOutputSpec{Width: 200, Height: 200, InitialRoot: root}}); err != nil {
		t.Fatalf("register output: %v", err)
	}

	p.mu.RLock()
	res := p.resolutions
	p.mu.RUnlock()
	layouts, textures := p.layoutEng.Layouts(root, geom.Rect{Width: 200, Height: 200}, res, nil)
	if len(textures) != 1 {
		t.Fatalf("expected a texture ref while the input is registered, got %d", len(textures))
	}
	_ = layouts

	if err := p.UnregisterInput("in1"); err != nil {
		t.Fatalf("unregister: %v", err)
	}

	p.mu.RLock()
	res = p.resolutions
	p.mu.RUnlock()
	layouts, textures = p.layoutEng.Layouts(root, geom.Rect{Width: 200, Height: 200}, res, nil)
	if len(textures) != 0 {
		t.Fatalf("expected no texture ref once the input is unregistered, got %d", len(textures))
	}
	if _, ok := layouts[0].Content.(layout.ColorContent); !ok {
		t.Fatalf("expected the layout to fall back to ColorContent, got %T", layouts[0].Content)
	}
}

// tile_transitions: a persisted tile (same ComponentId across an update)
// must interpolate smoothly, while a newly-added tile appears at its end
// position immediately — verified at the point internal/pipeline bridges
// scene's eased state into layout's grid via buildTileOverrides.
func TestBuildTileOverridesInterpolatesPersistedTileAndSnapsNewTile(t *testing.T) {
	p := NewPipeline(testConfig(), nil)

	start := scene.Tiles{Id: "tiles", Children: []scene.Component{
		scene.InputStream{Id: "c1"},
		scene.InputStream{Id: "c2"},
	}}
	if err := p.RegisterOutput("out1", OutputSpec{Video: &VideoOutputSpec{Width: 1000, Height: 1000, InitialRoot: start}}); err != nil {
		t.Fatalf("register output: %v", err)
	}

	end := scene.Tiles{Id: "tiles", Children: []scene.Component{
		scene.InputStream{Id: "c1"},
		scene.InputStream{Id: "c2"},
		scene.InputStream{Id: "c3"},
	}}
	decl := map[ids.ComponentId]scene.Transition{"tiles": {Duration: time.Second, Easing: scene.Easing{Kind: scene.EasingLinear}}}
	if err := p.UpdateOutput("out1", OutputUpdateSpec{VideoRoot: end, DeclaredTrans: decl}); err != nil {
		t.Fatalf("update output: %v", err)
	}

	box := geom.Rect{Width: 1000, Height: 1000}
	queryPTS := 500 * time.Millisecond
	snapshots := p.scenes.TileTransitions("out1", queryPTS)
	if len(snapshots) != 1 {
		t.Fatalf("expected exactly one in-progress tile transition, got %d", len(snapshots))
	}
	state := snapshots[0].State
	if state <= 0 || state >= 1 {
		t.Fatalf("expected the transition to be partway through at %v, got state %v", queryPTS, state)
	}

	overrides := p.buildTileOverrides("out1", queryPTS, box)
	ov, ok := overrides["tiles"]
	if !ok {
		t.Fatal("expected an override for the in-progress tile transition")
	}
	if len(ov.Order) != 3 {
		t.Fatalf("expected 3 tiles in the end layout, got %d", len(ov.Order))
	}

	endGrid := layoutGridFor(t, end, box)
	c3Rect := ov.Rects["c3"]
	if c3Rect != endGrid["c3"] {
		t.Fatalf("newly-added tile should snap to its end rect immediately, got %+v want %+v", c3Rect, endGrid["c3"])
	}

	startGrid := layoutGridFor(t, start, box)
	c1Mid := ov.Rects["c1"]
	wantMid := startGrid["c1"].Lerp(endGrid["c1"], state)
	if c1Mid != wantMid {
		t.Fatalf("persisted tile should interpolate by the transition's eased state, got %+v want %+v", c1Mid, wantMid)
	}
}

// layoutGridFor is a tiny test helper replicating pipeline's own grid call
// for an independent end/start Tiles node, to compute the expected rects.
func layoutGridFor(t *testing.T, tiles scene.Tiles, box geom.Rect) map[ids.ComponentId]geom.Rect {
	t.Helper()
	rects := computeTileGrid(t, tiles, box)
	out := make(map[ids.ComponentId]geom.Rect, len(tiles.Children))
	for i, c := range tiles.Children {
		if i < len(rects) {
			out[c.ID()] = rects[i]
		}
	}
	return out
}

// schedule_update: the scene must remain unchanged before the scheduled
// apply PTS, then take effect once the OutputScheduler drains it.
func TestUpdateOutputScheduledDoesNotApplyEarly(t *testing.T) {
	p := NewPipeline(testConfig(), nil)
	start := scene.InputStream{Id: "a", Width: f(10)}
	if err := p.RegisterOutput("out1", OutputSpec{Video: &VideoOutputSpec{Width: 100, Height: 100, InitialRoot: start}}); err != nil {
		t.Fatalf("register output: %v", err)
	}

	applyAt := int64(2000)
	end := scene.InputStream{Id: "a", Width: f(90)}
	if err := p.UpdateOutput("out1", OutputUpdateSpec{VideoRoot: end, ScheduleTimeMs: &applyAt}); err != nil {
		t.Fatalf("update output: %v", err)
	}

	before, err := p.scenes.Resolve("out1", 0)
	if err != nil {
		t.Fatalf("resolve before apply: %v", err)
	}
	if *before.(scene.InputStream).Width != 10 {
		t.Fatalf("scene should be unchanged before the scheduled pts, got width %v", *before.(scene.InputStream).Width)
	}

	p.scheduler.OutputScheduler().DrainDue(2 * time.Second)

	after, err := p.scenes.Resolve("out1", 2*time.Second)
	if err != nil {
		t.Fatalf("resolve after apply: %v", err)
	}
	if *after.(scene.InputStream).Width != 90 {
		t.Fatalf("scene should reflect the scheduled update once its pts is reached, got width %v", *after.(scene.InputStream).Width)
	}
}

// audio_mixing: RegisterOutput's audio wiring must reach mixer.Mixer so a
// MixTick weights each input by its configured volume.
func TestRegisterOutputWiresAudioMixerConfig(t *testing.T) {
	p := NewPipeline(testConfig(), nil)
	if err := p.RegisterInput("in1", InputSpec{HasAudio: true}); err != nil {
		t.Fatalf("register in1: %v", err)
	}
	if err := p.RegisterInput("in2", InputSpec{HasAudio: true}); err != nil {
		t.Fatalf("register in2: %v", err)
	}

	spec := OutputSpec{Audio: &AudioOutputSpec{
		InitialInputs: []mixer.InputConfig{
			{InputId: "in1", Volume: 0.3},
			{InputId: "in2", Volume: 0.7},
		},
		Channels: mixer.ChannelsStereo,
		Strategy: mixer.StrategySumClip,
	}}
	if err := p.RegisterOutput("out1", spec); err != nil {
		t.Fatalf("register output: %v", err)
	}

	set := frame.NewSampleSet(0, time.Second)
	set.Batches["in1"] = []frame.SampleBatch{{Samples: frame.Stereo16{{1000, 1000}}, StartPTS: 0, SampleRate: 1}}
	set.Batches["in2"] = []frame.SampleBatch{{Samples: frame.Stereo16{{1000, 1000}}, StartPTS: 0, SampleRate: 1}}

	batch := p.mix.MixTick("out1", set, 1)
	stereo := batch.Samples.(frame.Stereo16)
	if stereo[0][0] != 1000 { // 1000*0.3 + 1000*0.7 = 1000
		t.Fatalf("expected volume-weighted sum 1000, got %v", stereo[0][0])
	}
}

func TestUnregisterOutputRemovesSceneAndMixerState(t *testing.T) {
	p := NewPipeline(testConfig(), nil)
	root := scene.InputStream{Id: "a"}
	if err := p.RegisterOutput("out1", OutputSpec{Video: &VideoOutputSpec{Width: 10, Height: 10, InitialRoot: root}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := p.UnregisterOutput("out1", nil); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if _, err := p.scenes.Resolve("out1", 0); err == nil {
		t.Fatal("expected resolving an unregistered output to fail")
	}
}

func TestRegisterShaderAndImageValidateScene(t *testing.T) {
	p := NewPipeline(testConfig(), nil)
	if err := p.RegisterShader("shader1", "fn main() {}"); err != nil {
		t.Fatalf("register shader: %v", err)
	}
	root := scene.Shader{Id: "s", ShaderId: "shader1"}
	if err := p.RegisterOutput("out1", OutputSpec{Video: &VideoOutputSpec{Width: 10, Height: 10, InitialRoot: root}}); err != nil {
		t.Fatalf("expected scene referencing a registered shader to validate, got: %v", err)
	}
	if err := p.RegisterImage("img1", frame.Resolution{Width: 10, Height: 10}); err != nil {
		t.Fatalf("register image: %v", err)
	}
	imgRoot := scene.Image{Id: "i", ImageId: "img1"}
	if err := p.RegisterOutput("out2", OutputSpec{Video: &VideoOutputSpec{Width: 10, Height: 10, InitialRoot: imgRoot}}); err != nil {
		t.Fatalf("expected scene referencing a registered image to validate, got: %v", err)
	}
}

func TestRegisterImageRejectsNonPositiveResolution(t *testing.T) {
	p := NewPipeline(testConfig(), nil)
	if err := p.RegisterImage("img1", frame.Resolution{Width: 0, Height: 0}); err == nil {
		t.Fatal("expected zero resolution to be rejected")
	}
}

func TestStatusReflectsRegisteredEntities(t *testing.T) {
	p := NewPipeline(testConfig(), nil)
	if err := p.RegisterInput("in1", InputSpec{HasVideo: true}); err != nil {
		t.Fatalf("register input: %v", err)
	}
	if err := p.RegisterOutput("out1", OutputSpec{Video: &VideoOutputSpec{Width: 10, Height: 10, InitialRoot: scene.InputStream{Id: "a"}}}); err != nil {
		t.Fatalf("register output: %v", err)
	}
	status := p.Status()
	if len(status.Inputs) != 1 || len(status.Outputs) != 1 {
		t.Fatalf("expected 1 input and 1 output in status, got %+v", status)
	}
}

// computeTileGrid mirrors buildTileOverrides' own call into layout, kept
// as a tiny local helper so the test doesn't need to duplicate the grid
// math to compute an expected rect set.
func computeTileGrid(t *testing.T, tiles scene.Tiles, box geom.Rect) []geom.Rect {
	t.Helper()
	return layout.ComputeTileGrid(len(tiles.Children), tiles.TileAspectRatioW, tiles.TileAspectRatioH, tiles.Margin, tiles.Padding, box, tiles.HorizontalAlign)
}
