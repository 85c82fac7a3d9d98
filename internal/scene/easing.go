package scene

import "math"

// EasingKind tags which interpolation curve a Transition uses.
type EasingKind int

const (
	EasingLinear EasingKind = iota
	EasingBounce
	EasingCubicBezier
	// EasingScript is an ADDED variant evaluating a per-tick Lua expression
	// (see lua_easing.go); absent from original_source, grounded on the
	// teacher's internal/lua sandboxing pattern.
	EasingScript
)

// Easing is attached to a Transition; Apply maps a clamped [0,1]
// interpolation state to an eased state. Bounce and Script may return
// values outside [0,1] by design (spring overshoot) — callers must clamp
// the *input* state, never the output (see transition.go).
type Easing struct {
	Kind EasingKind

	// CubicBezier control points; P1/P3 are x-coordinates and must lie in
	// [0,1], P2/P4 are y-coordinates and are unconstrained.
	P1, P2, P3, P4 float64

	// Script is the Lua expression body evaluated for EasingScript, with
	// `state` bound as a global number; must return a number.
	Script string
}

// Apply evaluates the easing curve at a state already clamped to [0,1].
func (e Easing) Apply(state float64) float64 {
	switch e.Kind {
	case EasingLinear:
		return state
	case EasingBounce:
		return bounce(state)
	case EasingCubicBezier:
		return cubicBezier(e.P1, e.P2, e.P3, e.P4, state)
	case EasingScript:
		v, err := evalScriptEasing(e.Script, state)
		if err != nil {
			return state // fall back to linear on any script failure
		}
		return v
	default:
		return state
	}
}

// bounce is the fixed exponentially-damped sinusoid approximating spring
// recoil, transcribed from original_source's Interpolation::Spring branch
// (compositor_common/src/scene/transition.rs).
func bounce(state float64) float64 {
	if state < 0.2 {
		return math.Pow(state*5.0, 0.3) + math.Exp(-state*14.0)*math.Sin(10*math.Pi*state)
	}
	return 1.0 + math.Exp(-state*14.0)*math.Sin(10*math.Pi*state)
}

// cubicBezier solves the standard two-control-point parametric Bezier
// x(t)->y(t) mapping for y at the given x=state, via bisection on t. p1/p3
// are x-coordinates (clamped into [0,1] when a transition is decoded, see
// easingWire.toEasing),
// p2/p4 are y-coordinates.
func cubicBezier(p1x, p1y, p2x, p2y, x float64) float64 {
	bezierX := func(t float64) float64 {
		mt := 1 - t
		return 3*mt*mt*t*p1x + 3*mt*t*t*p2x + t*t*t
	}
	bezierY := func(t float64) float64 {
		mt := 1 - t
		return 3*mt*mt*t*p1y + 3*mt*t*t*p2y + t*t*t
	}

	lo, hi := 0.0, 1.0
	t := x
	for i := 0; i < 30; i++ {
		t = (lo + hi) / 2
		bx := bezierX(t)
		if math.Abs(bx-x) < 1e-7 {
			break
		}
		if bx < x {
			lo = t
		} else {
			hi = t
		}
	}
	return bezierY(t)
}
