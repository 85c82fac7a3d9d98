// Package geom holds the tiny plain-data rectangle/matrix types shared
// between scene (transition interpolation) and layout (flattening), kept
// dependency-free so neither of those packages needs to import the other.
package geom

import "github.com/smeltergo/compositor/internal/ids"

// Rect is an axis-aligned, unrotated box in output pixel coordinates,
// before layout.Box adds rotation and converts to a transformation matrix.
type Rect struct {
	Top, Left, Width, Height float64
}

// Lerp linearly interpolates every field of two rects by state in [0,1]
// (state outside that range is allowed and extrapolates, used by bounce
// easing's overshoot).
func (r Rect) Lerp(end Rect, state float64) Rect {
	return Rect{
		Top:    r.Top + (end.Top-r.Top)*state,
		Left:   r.Left + (end.Left-r.Left)*state,
		Width:  r.Width + (end.Width-r.Width)*state,
		Height: r.Height + (end.Height-r.Height)*state,
	}
}

// TileOverride carries precomputed, already-interpolated tile rectangles
// for one Tiles component, keyed by each child's ComponentId. internal/
// pipeline builds these mid-transition from scene.SceneState.TileTransitions
// and layout.ComputeTileGrid; LayoutEngine.Layouts then consumes them
// directly instead of recomputing the grid from scratch. Lives in geom
// (not scene or layout) so neither of those packages needs to import the
// other.
type TileOverride struct {
	Order []ids.ComponentId
	Rects map[ids.ComponentId]Rect
}
