package scene

import (
	"fmt"
	"sync"
	"time"

	"github.com/smeltergo/compositor/internal/ids"
)

// ValidationError reports why a scene update was rejected; scene state is
// left unchanged on any ValidationError (spec.md §7).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "scene validation: " + e.Reason }

// RendererRegistry answers whether a RendererId (shader/image/webview
// instance) is currently registered, letting SceneState validate
// references without owning the registries itself.
type RendererRegistry interface {
	RendererExists(id ids.RendererId) bool
}

type outputScene struct {
	root        Component
	transitions map[ids.ComponentId]*StatefulTransition
}

// SceneState owns the current Component tree per output, builds
// StatefulTransitions on update, and resolves per-tick snapshots. Ported
// from original_source/compositor_render/src/scene.rs.
type SceneState struct {
	mu         sync.RWMutex
	outputs    map[ids.OutputId]*outputScene
	registry   RendererRegistry
}

func NewSceneState(registry RendererRegistry) *SceneState {
	return &SceneState{
		outputs:  make(map[ids.OutputId]*outputScene),
		registry: registry,
	}
}

// RegisterOutput installs an output's initial scene, validating it in
// isolation (no prior tree to diff transitions against).
func (s *SceneState) RegisterOutput(id ids.OutputId, root Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate(id, root); err != nil {
		return err
	}

	s.outputs[id] = &outputScene{root: root, transitions: make(map[ids.ComponentId]*StatefulTransition)}
	return nil
}

func (s *SceneState) UnregisterOutput(id ids.OutputId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.outputs, id)
}

// Update implements spec.md §4.4's scene-update algorithm: validate, diff
// against the previous tree to create StatefulTransitions for components
// that kept their ComponentId and declared a Transition, then atomically
// swap. nowPTS is the tick this update takes effect at (StartPTS for any
// new transitions).
func (s *SceneState) Update(id ids.OutputId, newRoot Component, nowPTS time.Duration, declaredTransitions map[ids.ComponentId]Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.outputs[id]
	if !ok {
		return &ValidationError{Reason: fmt.Sprintf("output %q not registered", id)}
	}

	if err := s.validate(id, newRoot); err != nil {
		return err
	}

	prevByID := indexByID(prev.root)
	newByID := indexByID(newRoot)

	transitions := make(map[ids.ComponentId]*StatefulTransition)
	for cid, newComp := range newByID {
		spec, declared := declaredTransitions[cid]
		if !declared {
			continue
		}
		oldComp, existed := prevByID[cid]
		if !existed {
			continue // nothing to transition from; adopt verbatim
		}
		if componentKind(oldComp) != componentKind(newComp) {
			return &ValidationError{Reason: fmt.Sprintf("transition start/end kind mismatch for component %q", cid)}
		}
		transitions[cid] = &StatefulTransition{
			Start:    oldComp,
			End:      newComp,
			StartPTS: nowPTS,
			Duration: spec.Duration,
			Easing:   spec.Easing,
		}
	}

	s.outputs[id] = &outputScene{root: newRoot, transitions: transitions}
	return nil
}

// Resolve returns the component tree as it should render at pts, with
// every in-progress StatefulTransition interpolated in place. Layout still
// needs to know the raw start/end Tiles nodes and eased state for any Tiles
// component under an active transition, since computing its grid is
// layout's job, not scene's (see TileTransitions).
func (s *SceneState) Resolve(id ids.OutputId, pts time.Duration) (Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, ok := s.outputs[id]
	if !ok {
		return nil, &ValidationError{Reason: fmt.Sprintf("output %q not registered", id)}
	}

	for cid, t := range out.transitions {
		if t.Finished(pts) {
			delete(out.transitions, cid)
		}
	}

	return resolveTree(out.root, out.transitions, pts), nil
}

// TileTransitionSnapshot exposes one active StatefulTransition whose End is
// a Tiles component, in a form internal/pipeline can feed to
// layout.ComputeTileGrid for both endpoints without scene needing to import
// layout itself.
type TileTransitionSnapshot struct {
	Start Tiles
	End   Tiles
	State float64 // eased, post-clamp-before-ease state at the queried pts
}

// TileTransitions returns a snapshot for every in-progress transition on
// output id whose End component is a Tiles node.
func (s *SceneState) TileTransitions(id ids.OutputId, pts time.Duration) []TileTransitionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out, ok := s.outputs[id]
	if !ok {
		return nil
	}

	var snapshots []TileTransitionSnapshot
	for _, t := range out.transitions {
		endTiles, ok := t.End.(Tiles)
		if !ok {
			continue
		}
		startTiles, ok := t.Start.(Tiles)
		if !ok {
			continue
		}
		snapshots = append(snapshots, TileTransitionSnapshot{
			Start: startTiles,
			End:   endTiles,
			State: t.easedState(pts),
		})
	}
	return snapshots
}

func resolveTree(c Component, transitions map[ids.ComponentId]*StatefulTransition, pts time.Duration) Component {
	if t, ok := transitions[c.ID()]; ok && c.ID() != "" {
		c = t.Resolve(pts)
	}

	switch n := c.(type) {
	case View:
		children := make([]Child, len(n.Children))
		for i, ch := range n.Children {
			children[i] = Child{Component: resolveTree(ch.Component, transitions, pts), Position: ch.Position}
		}
		n.Children = children
		return n
	case Shader:
		n.Children = resolveChildren(n.Children, transitions, pts)
		return n
	case WebView:
		n.Children = resolveChildren(n.Children, transitions, pts)
		return n
	case Tiles:
		n.Children = resolveChildren(n.Children, transitions, pts)
		return n
	case Rescaler:
		n.Child = resolveTree(n.Child, transitions, pts)
		return n
	default:
		return c
	}
}

func resolveChildren(children []Component, transitions map[ids.ComponentId]*StatefulTransition, pts time.Duration) []Component {
	out := make([]Component, len(children))
	for i, c := range children {
		out[i] = resolveTree(c, transitions, pts)
	}
	return out
}

func componentKind(c Component) string {
	switch c.(type) {
	case InputStream:
		return "InputStream"
	case Shader:
		return "Shader"
	case Image:
		return "Image"
	case Text:
		return "Text"
	case View:
		return "View"
	case Rescaler:
		return "Rescaler"
	case Tiles:
		return "Tiles"
	case WebView:
		return "WebView"
	default:
		return "unknown"
	}
}

// validate enforces spec.md §3/§7's scene validation rules: unique
// ComponentIds across all outputs (this update's tree plus every other
// output's current tree), WebView instance ids not aliased within this
// tree, and
// every referenced renderer id exists.
func (s *SceneState) validate(updating ids.OutputId, root Component) error {
	seenIDs := make(map[ids.ComponentId]bool)
	seenInstances := make(map[ids.RendererId]bool)

	if err := walkValidate(root, seenIDs, seenInstances, s.registry); err != nil {
		return err
	}

	for oid, out := range s.outputs {
		if oid == updating {
			continue
		}
		for cid := range indexByID(out.root) {
			if seenIDs[cid] {
				return &ValidationError{Reason: fmt.Sprintf("component id %q already used by output %q", cid, oid)}
			}
		}
	}

	return nil
}

func walkValidate(c Component, seenIDs map[ids.ComponentId]bool, seenInstances map[ids.RendererId]bool, registry RendererRegistry) error {
	if c == nil {
		return nil
	}
	if id := c.ID(); id != "" {
		if seenIDs[id] {
			return &ValidationError{Reason: fmt.Sprintf("duplicate component id %q", id)}
		}
		seenIDs[id] = true
	}

	switch n := c.(type) {
	case Shader:
		if registry != nil && !registry.RendererExists(n.ShaderId) {
			return &ValidationError{Reason: fmt.Sprintf("unknown shader id %q", n.ShaderId)}
		}
		for _, child := range n.Children {
			if err := walkValidate(child, seenIDs, seenInstances, registry); err != nil {
				return err
			}
		}
	case Image:
		if registry != nil && !registry.RendererExists(n.ImageId) {
			return &ValidationError{Reason: fmt.Sprintf("unknown image id %q", n.ImageId)}
		}
	case WebView:
		if seenInstances[n.InstanceId] {
			return &ValidationError{Reason: fmt.Sprintf("webview instance %q aliased across multiple components", n.InstanceId)}
		}
		seenInstances[n.InstanceId] = true
		if registry != nil && !registry.RendererExists(n.InstanceId) {
			return &ValidationError{Reason: fmt.Sprintf("unknown webview instance %q", n.InstanceId)}
		}
		for _, child := range n.Children {
			if err := walkValidate(child, seenIDs, seenInstances, registry); err != nil {
				return err
			}
		}
	case View:
		for _, ch := range n.Children {
			if err := walkValidate(ch.Component, seenIDs, seenInstances, registry); err != nil {
				return err
			}
		}
	case Tiles:
		for _, child := range n.Children {
			if err := walkValidate(child, seenIDs, seenInstances, registry); err != nil {
				return err
			}
		}
	case Rescaler:
		return walkValidate(n.Child, seenIDs, seenInstances, registry)
	}
	return nil
}

func indexByID(root Component) map[ids.ComponentId]Component {
	out := make(map[ids.ComponentId]Component)
	var walk func(Component)
	walk = func(c Component) {
		if c == nil {
			return
		}
		if id := c.ID(); id != "" {
			out[id] = c
		}
		switch n := c.(type) {
		case Shader:
			for _, child := range n.Children {
				walk(child)
			}
		case WebView:
			for _, child := range n.Children {
				walk(child)
			}
		case View:
			for _, ch := range n.Children {
				walk(ch.Component)
			}
		case Tiles:
			for _, child := range n.Children {
				walk(child)
			}
		case Rescaler:
			walk(n.Child)
		}
	}
	walk(root)
	return out
}
