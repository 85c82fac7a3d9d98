package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smeltergo/compositor/internal/clock"
	"github.com/smeltergo/compositor/internal/events"
	"github.com/smeltergo/compositor/internal/frame"
	"github.com/smeltergo/compositor/internal/geom"
	"github.com/smeltergo/compositor/internal/glue"
	"github.com/smeltergo/compositor/internal/ids"
	"github.com/smeltergo/compositor/internal/layout"
	"github.com/smeltergo/compositor/internal/mixer"
	"github.com/smeltergo/compositor/internal/queue"
	"github.com/smeltergo/compositor/internal/scene"
)

// Config is the pipeline-wide configuration carved out of internal/config
// at startup (output framerate, mixing rate, real-time mode).
type Config struct {
	FramerateNum     int
	FramerateDen     int
	RealTimeMode     bool
	MixingSampleRate int
}

type inputEntry struct {
	spec      InputSpec
	ready     bool
	transport glue.Transport
}

type outputEntry struct {
	spec OutputSpec
}

// rendererRegistry implements scene.RendererRegistry over whatever
// shaders/images/webview instances have been registered through the
// control plane.
type rendererRegistry struct {
	mu  sync.RWMutex
	ids map[ids.RendererId]bool
}

func newRendererRegistry() *rendererRegistry {
	return &rendererRegistry{ids: make(map[ids.RendererId]bool)}
}

func (r *rendererRegistry) add(id ids.RendererId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[id] = true
}

func (r *rendererRegistry) remove(id ids.RendererId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, id)
}

func (r *rendererRegistry) RendererExists(id ids.RendererId) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ids[id]
}

// Pipeline is one running compositor instance: the single Clock/
// FrameQueue/AudioQueue/Scheduler shared by every registered output, plus
// the per-output SceneState/Mixer configuration and the registries behind
// scene validation.
type Pipeline struct {
	cfg Config

	clock      *clock.Clock
	frameQueue *queue.FrameQueue
	audioQueue *queue.AudioQueue
	scheduler  *queue.Scheduler
	registry   *rendererRegistry
	scenes     *scene.SceneState
	mix        *mixer.Mixer
	layoutEng  *layout.Engine
	emitter    *events.Emitter
	renderer   glue.Renderer        // optional; nil when no GPU backend is wired
	transports glue.TransportOpener // optional; nil skips real socket wiring

	mu          sync.RWMutex
	inputs      map[ids.InputId]*inputEntry
	outputs     map[ids.OutputId]*outputEntry
	resolutions layout.Resolutions

	startOnce sync.Once
	startedAt time.Time
}

// NewPipeline wires every subsystem together. renderer may be nil — a
// pipeline with no Renderer still runs the full queue/scene/layout/mixer
// chain, it just never calls Composite/ReadbackFrame.
func NewPipeline(cfg Config, renderer glue.Renderer) *Pipeline {
	clk := clock.New()
	frames := queue.NewFrameQueue()
	samples := queue.NewAudioQueue()
	registry := newRendererRegistry()

	p := &Pipeline{
		cfg:        cfg,
		clock:      clk,
		frameQueue: frames,
		audioQueue: samples,
		scheduler:  queue.NewScheduler(clk, frames, samples, cfg.FramerateNum, cfg.FramerateDen, cfg.RealTimeMode),
		registry:   registry,
		scenes:     scene.NewSceneState(registry),
		mix:        mixer.NewMixer(),
		layoutEng:  layout.NewEngine(),
		emitter:    events.NewEmitter(),
		renderer:   renderer,
		inputs:     make(map[ids.InputId]*inputEntry),
		outputs:    make(map[ids.OutputId]*outputEntry),
		resolutions: layout.Resolutions{
			Inputs: make(map[ids.InputId]frame.Resolution),
			Images: make(map[ids.RendererId]frame.Resolution),
		},
	}

	p.scheduler.SetDispatchFunc(p.dispatch)
	p.scheduler.AddListener(p.onInputFrame)
	return p
}

func (p *Pipeline) Events() *events.Emitter { return p.emitter }

// SetTransportOpener wires real RTP socket construction into input
// registration (see glue.NetTransportOpener). Left unset by default so
// pipelines fed directly through EnqueueFrame/EnqueueSampleBatch, and
// every test in this package, never need a live port.
func (p *Pipeline) SetTransportOpener(o glue.TransportOpener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transports = o
}

// Start launches the scheduler loop, per spec.md §6's POST /api/start.
// Safe to call more than once; only the first call has effect.
func (p *Pipeline) Start() error {
	p.startOnce.Do(func() {
		p.startedAt = time.Now()
		go p.scheduler.Run()
	})
	return nil
}

func (p *Pipeline) Status() StatusSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	inputIDs := make([]ids.InputId, 0, len(p.inputs))
	for id := range p.inputs {
		inputIDs = append(inputIDs, id)
	}
	outputIDs := make([]ids.OutputId, 0, len(p.outputs))
	for id := range p.outputs {
		outputIDs = append(outputIDs, id)
	}

	return StatusSnapshot{
		Running:   !p.startedAt.IsZero(),
		Inputs:    inputIDs,
		Outputs:   outputIDs,
		StartedAt: p.startedAt,
	}
}

// RegisterInput implements POST /api/input/{id}/register. When a
// TransportOpener is configured (glue.NetTransportOpener in production),
// this also opens the live socket spec.TransportProtocol/spec.Port name
// before the input is considered registered; a failing open is reported
// as a registration error rather than leaving a half-registered input.
func (p *Pipeline) RegisterInput(id ids.InputId, spec InputSpec) error {
	if !spec.HasVideo && !spec.HasAudio {
		return &RegistrationError{Reason: "input must declare video, audio, or both"}
	}

	p.mu.Lock()
	if _, exists := p.inputs[id]; exists {
		p.mu.Unlock()
		return &RegistrationError{Reason: fmt.Sprintf("input %q already registered", id)}
	}
	opener := p.transports
	p.mu.Unlock()

	var transport glue.Transport
	if opener != nil {
		t, err := opener.Open(spec.TransportProtocol, spec.Port)
		if err != nil {
			return &RegistrationError{Reason: fmt.Sprintf("open transport for input %q: %v", id, err)}
		}
		transport = t
	}

	p.mu.Lock()
	if _, exists := p.inputs[id]; exists {
		p.mu.Unlock()
		if transport != nil {
			transport.Close()
		}
		return &RegistrationError{Reason: fmt.Sprintf("input %q already registered", id)}
	}
	p.inputs[id] = &inputEntry{spec: spec, transport: transport}
	required := p.requiredInputsLocked()
	p.mu.Unlock()

	if spec.HasVideo {
		p.frameQueue.AddInput(id)
	}
	if spec.HasAudio {
		p.audioQueue.AddInput(id)
	}
	p.scheduler.SetRequiredInputs(required)
	return nil
}

// UnregisterInput implements POST /api/input/{id}/unregister. In-flight
// frames already buffered are simply dropped along with the queue entry
// (spec.md §3's "in-flight frames are drained then dropped").
func (p *Pipeline) UnregisterInput(id ids.InputId) error {
	p.mu.Lock()
	entry, exists := p.inputs[id]
	if !exists {
		p.mu.Unlock()
		return &RegistrationError{Reason: fmt.Sprintf("input %q not registered", id)}
	}
	delete(p.inputs, id)
	delete(p.resolutions.Inputs, id)
	required := p.requiredInputsLocked()
	p.mu.Unlock()

	if entry.spec.HasVideo {
		p.frameQueue.RemoveInput(id)
	}
	if entry.spec.HasAudio {
		p.audioQueue.RemoveInput(id)
	}
	if entry.transport != nil {
		entry.transport.Close()
	}
	p.scheduler.SetRequiredInputs(required)
	p.emitter.Emit(events.Event{Kind: events.KindInputEOS, InputId: id, Timestamp: time.Now()})
	return nil
}

func (p *Pipeline) requiredInputsLocked() []ids.InputId {
	var required []ids.InputId
	for id, e := range p.inputs {
		if e.spec.Required {
			required = append(required, id)
		}
	}
	return required
}

// RegisterOutput implements POST /api/output/{id}/register.
func (p *Pipeline) RegisterOutput(id ids.OutputId, spec OutputSpec) error {
	if spec.Video == nil && spec.Audio == nil {
		return &RegistrationError{Reason: "output must declare video, audio, or both"}
	}

	p.mu.Lock()
	if _, exists := p.outputs[id]; exists {
		p.mu.Unlock()
		return &RegistrationError{Reason: fmt.Sprintf("output %q already registered", id)}
	}
	p.outputs[id] = &outputEntry{spec: spec}
	p.mu.Unlock()

	if spec.Video != nil {
		if err := p.scenes.RegisterOutput(id, spec.Video.InitialRoot); err != nil {
			p.mu.Lock()
			delete(p.outputs, id)
			p.mu.Unlock()
			return err
		}
	}

	if spec.Audio != nil {
		p.mix.SetOutputConfig(id, mixer.OutputConfig{
			Inputs:   spec.Audio.InitialInputs,
			Strategy: spec.Audio.Strategy,
			Channels: spec.Audio.Channels,
		})
	}

	return nil
}

// UpdateOutput implements POST /api/output/{id}/update: replace now, or
// schedule for a future PTS via the OutputScheduler.
func (p *Pipeline) UpdateOutput(id ids.OutputId, spec OutputUpdateSpec) error {
	p.mu.RLock()
	_, exists := p.outputs[id]
	p.mu.RUnlock()
	if !exists {
		return &RegistrationError{Reason: fmt.Sprintf("output %q not registered", id)}
	}

	apply := func() {
		now := p.clock.Elapsed()
		if spec.VideoRoot != nil {
			if err := p.scenes.Update(id, spec.VideoRoot, now, spec.DeclaredTrans); err != nil {
				return
			}
		}
		if spec.AudioInputs != nil {
			p.mu.RLock()
			entry := p.outputs[id]
			p.mu.RUnlock()
			if entry != nil && entry.spec.Audio != nil {
				p.mix.SetOutputConfig(id, mixer.OutputConfig{
					Inputs:   spec.AudioInputs,
					Strategy: entry.spec.Audio.Strategy,
					Channels: entry.spec.Audio.Channels,
				})
			}
		}
	}

	if spec.ScheduleTimeMs != nil {
		applyAt := time.Duration(*spec.ScheduleTimeMs) * time.Millisecond
		p.scheduler.OutputScheduler().ScheduleAt(applyAt, apply)
		return nil
	}
	apply()
	return nil
}

// UnregisterOutput implements POST /api/output/{id}/unregister.
func (p *Pipeline) UnregisterOutput(id ids.OutputId, scheduleTimeMs *int64) error {
	remove := func() {
		p.mu.Lock()
		delete(p.outputs, id)
		p.mu.Unlock()
		p.scenes.UnregisterOutput(id)
		p.mix.RemoveOutput(id)
		p.emitter.Emit(events.Event{Kind: events.KindOutputDone, OutputId: id, Timestamp: time.Now()})
	}

	if scheduleTimeMs != nil {
		applyAt := time.Duration(*scheduleTimeMs) * time.Millisecond
		p.scheduler.OutputScheduler().ScheduleAt(applyAt, remove)
		return nil
	}
	remove()
	return nil
}

// RegisterShader implements POST /api/shader/{id}/register. Shader
// compilation/execution is out of scope (GPU layer is a glue concern);
// registering just makes the id a valid Shader reference for scene
// validation.
func (p *Pipeline) RegisterShader(id ids.RendererId, source string) error {
	if source == "" {
		return &RegistrationError{Reason: "shader source must not be empty"}
	}
	p.registry.add(id)
	return nil
}

// RegisterImage implements POST /api/image/{id}/register.
func (p *Pipeline) RegisterImage(id ids.RendererId, res frame.Resolution) error {
	if res.Width <= 0 || res.Height <= 0 {
		return &RegistrationError{Reason: "image resolution must be positive"}
	}
	p.mu.Lock()
	p.resolutions.Images[id] = res
	p.mu.Unlock()
	p.registry.add(id)
	return nil
}

// EnqueueFrame feeds a decoded video frame from a glue.Decoder into the
// pipeline; this is the boundary real input decode threads call across.
func (p *Pipeline) EnqueueFrame(id ids.InputId, f frame.Frame) error {
	p.mu.Lock()
	p.resolutions.Inputs[id] = f.Resolution
	p.mu.Unlock()

	if err := p.frameQueue.EnqueueFrame(id, f, p.clock.Elapsed()); err != nil {
		return err
	}
	p.scheduler.NotifyFirstFrame()
	p.emitter.Emit(events.Event{Kind: events.KindVideoInputDelivered, InputId: id, Timestamp: time.Now()})
	return nil
}

// EnqueueSampleBatch feeds a decoded audio batch from a glue.Decoder.
func (p *Pipeline) EnqueueSampleBatch(id ids.InputId, b frame.SampleBatch) error {
	if err := p.audioQueue.EnqueueBatch(id, b, p.clock.Elapsed()); err != nil {
		return err
	}
	p.scheduler.NotifyFirstFrame()
	p.emitter.Emit(events.Event{Kind: events.KindAudioInputDelivered, InputId: id, Timestamp: time.Now()})
	return nil
}

func (p *Pipeline) onInputFrame(id ids.InputId, f *frame.Frame) {
	p.mu.Lock()
	entry, ok := p.inputs[id]
	alreadyReady := ok && entry.ready
	if ok {
		entry.ready = true
	}
	p.mu.Unlock()

	if ok && !alreadyReady {
		p.emitter.Emit(events.Event{Kind: events.KindInputPlaying, InputId: id, Timestamp: time.Now()})
	}
}

// dispatch is the scheduler's per-tick callback: for every registered
// output, resolve its scene, flatten it via LayoutEngine, optionally
// composite through the Renderer, and mix its audio.
func (p *Pipeline) dispatch(fs frame.FrameSet, ss frame.SampleSet) {
	p.mu.RLock()
	outputIDs := make([]ids.OutputId, 0, len(p.outputs))
	specs := make(map[ids.OutputId]OutputSpec, len(p.outputs))
	for id, e := range p.outputs {
		outputIDs = append(outputIDs, id)
		specs[id] = e.spec
	}
	res := p.resolutions
	p.mu.RUnlock()

	for _, id := range outputIDs {
		spec := specs[id]

		if spec.Video != nil {
			root, err := p.scenes.Resolve(id, fs.PTS)
			if err == nil && root != nil {
				box := geom.Rect{Width: float64(spec.Video.Width), Height: float64(spec.Video.Height)}
				overrides := p.buildTileOverrides(id, fs.PTS, box)
				layouts, textures := p.layoutEng.Layouts(root, box, res, overrides)
				p.composite(layouts, textures, fs, spec.Video.Width, spec.Video.Height)
			}
		}

		if spec.Audio != nil {
			p.mix.MixTick(id, ss, p.cfg.MixingSampleRate)
		}
	}
}

// buildTileOverrides bridges scene and layout: scene.SceneState only
// exposes raw Start/End Tiles nodes and an eased state (it cannot import
// layout without cycling back), so the grid math runs here, the one
// place both packages are available.
func (p *Pipeline) buildTileOverrides(id ids.OutputId, pts time.Duration, box geom.Rect) map[ids.ComponentId]geom.TileOverride {
	snapshots := p.scenes.TileTransitions(id, pts)
	if len(snapshots) == 0 {
		return nil
	}

	overrides := make(map[ids.ComponentId]geom.TileOverride, len(snapshots))
	for _, snap := range snapshots {
		startRects := layout.ComputeTileGrid(len(snap.Start.Children), snap.Start.TileAspectRatioW, snap.Start.TileAspectRatioH, snap.Start.Margin, snap.Start.Padding, box, snap.Start.HorizontalAlign)
		endRects := layout.ComputeTileGrid(len(snap.End.Children), snap.End.TileAspectRatioW, snap.End.TileAspectRatioH, snap.End.Margin, snap.End.Padding, box, snap.End.HorizontalAlign)

		order := make([]ids.ComponentId, 0, len(snap.End.Children))
		rects := make(map[ids.ComponentId]geom.Rect, len(snap.End.Children))
		startByID := make(map[ids.ComponentId]geom.Rect, len(snap.Start.Children))
		for i, c := range snap.Start.Children {
			if i < len(startRects) {
				startByID[c.ID()] = startRects[i]
			}
		}
		for i, c := range snap.End.Children {
			if i >= len(endRects) {
				break
			}
			order = append(order, c.ID())
			if startRect, ok := startByID[c.ID()]; ok {
				rects[c.ID()] = startRect.Lerp(endRects[i], snap.State)
			} else {
				rects[c.ID()] = endRects[i] // newly added tile appears immediately
			}
		}
		overrides[snap.End.Id] = geom.TileOverride{Order: order, Rects: rects}
	}
	return overrides
}

func (p *Pipeline) composite(layouts []layout.Layout, textures []layout.TextureRef, fs frame.FrameSet, width, height int) {
	if p.renderer == nil {
		return
	}

	handles := make([]glue.GPUTexture, 0, len(textures))
	for _, ref := range textures {
		if ref.Kind != layout.TextureInput {
			handles = append(handles, 0)
			continue
		}
		f, ok := fs.Frames[ref.InputId]
		if !ok {
			handles = append(handles, 0)
			continue
		}
		h, err := p.renderer.UploadTexture(context.Background(), f)
		if err != nil {
			handles = append(handles, 0)
			continue
		}
		handles = append(handles, h)
	}

	_ = p.renderer.Composite(context.Background(), layouts, handles, width, height)
}
