package scene

import (
	"time"

	"github.com/smeltergo/compositor/internal/ids"
)

// Transition is attached to a component whose parameters change between
// scene updates sharing the same ComponentId (spec.md §3).
type Transition struct {
	Duration time.Duration
	Easing   Easing
}

// StatefulTransition is created at scene-update time when a new component
// declares a Transition and a previous component shares its ComponentId.
// Start holds a snapshot of the previous component so a later scene
// replacement can never invalidate an in-progress transition (spec.md §9's
// "shared ownership" design note — a value copy here, since Go components
// are already plain structs with no shared mutable state).
type StatefulTransition struct {
	Start      Component
	End        Component
	StartPTS   time.Duration
	Duration   time.Duration
	Easing     Easing
}

// Resolve computes the interpolated component at pts, per spec.md §4.4:
// raw_state is clamped to [0,1] before easing; the eased result itself is
// not clamped (bounce/spring may overshoot). Once pts reaches StartPTS+
// Duration, the transition is finished and the caller should drop it in
// favor of End directly.
func (t StatefulTransition) Resolve(pts time.Duration) Component {
	if t.Duration <= 0 {
		return t.End
	}
	return InterpolateComponent(t.Start, t.End, t.easedState(pts))
}

// easedState computes the eased [0,1]-clamped-before-ease progress at pts,
// shared by Resolve and by TileTransitions' layout-facing snapshot.
func (t StatefulTransition) easedState(pts time.Duration) float64 {
	if t.Duration <= 0 {
		return 1
	}
	raw := float64(pts-t.StartPTS) / float64(t.Duration)
	if raw < 0 {
		raw = 0
	}
	if raw > 1 {
		raw = 1
	}
	return t.Easing.Apply(raw)
}

// Finished reports whether pts is at or past the transition's end.
func (t StatefulTransition) Finished(pts time.Duration) bool {
	return pts >= t.StartPTS+t.Duration
}

func (t StatefulTransition) ComponentId() ids.ComponentId {
	return t.End.ID()
}
