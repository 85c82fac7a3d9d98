// Package scene owns the declarative Component tree per output, resolves
// scene updates into StatefulTransitions, and produces a per-tick
// RenderedScene snapshot that LayoutEngine flattens. Ported from
// original_source/compositor_render/src/scene.rs and its scene/* component
// modules.
package scene

import "github.com/smeltergo/compositor/internal/ids"

// Component is a tagged variant over the node kinds a scene tree can
// contain (spec.md §3). Each concrete type optionally carries a
// ComponentId used to correlate instances across scene updates.
type Component interface {
	isComponent()
	ID() ids.ComponentId
}

type Direction int

const (
	DirectionRow Direction = iota
	DirectionColumn
)

type HorizontalAlign int

const (
	AlignLeft HorizontalAlign = iota
	AlignHCenter
	AlignRight
)

type VerticalAlign int

const (
	AlignTop VerticalAlign = iota
	AlignVCenter
	AlignBottom
)

type RescalerMode int

const (
	RescalerFit RescalerMode = iota
	RescalerFill
)

// Color is RGBA in [0,255] per channel, matching Layout.Content's solid
// fill variant.
type Color struct {
	R, G, B, A uint8
}

// Padding is interior spacing on a View, interpolated field-wise.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// BorderRadius is a per-corner radius, interpolated field-wise.
type BorderRadius struct {
	TopLeft, TopRight, BottomRight, BottomLeft float64
}

// BoxShadow is one drop shadow layer behind a View; Color snaps to end
// rather than channel-interpolating, matching spec.md §4.4.
type BoxShadow struct {
	OffsetX, OffsetY, BlurRadius float64
	Color                        Color
}

// Position tags whether a View child participates in static flow layout
// or is positioned absolutely within its parent's interior.
type Position interface {
	isPosition()
}

type StaticPosition struct{}

func (StaticPosition) isPosition() {}

// AbsolutePosition anchors a child by (top|bottom, left|right); any pair of
// opposite anchors left nil falls back to the child's intrinsic size.
type AbsolutePosition struct {
	Top, Bottom, Left, Right *float64
	Width, Height            *float64
}

func (AbsolutePosition) isPosition() {}

// Child pairs a component with its positioning mode inside a View.
type Child struct {
	Component Component
	Position  Position
}

// InputStream renders the most recent frame from a registered input.
// Size is optional: nil means "use the input's native resolution".
type InputStream struct {
	Id      ids.ComponentId
	InputId ids.InputId
	Width   *float64
	Height  *float64
}

func (InputStream) isComponent()         {}
func (c InputStream) ID() ids.ComponentId { return c.Id }

// Shader renders a registered shader source over its children's output.
type Shader struct {
	Id       ids.ComponentId
	ShaderId ids.RendererId
	Params   map[string]any
	Width    float64
	Height   float64
	Children []Component
}

func (Shader) isComponent()         {}
func (c Shader) ID() ids.ComponentId { return c.Id }

// Image renders a registered static image asset.
type Image struct {
	Id      ids.ComponentId
	ImageId ids.RendererId
}

func (Image) isComponent()         {}
func (c Image) ID() ids.ComponentId { return c.Id }

// Text renders a run of shaped text. Layout treats it as a fixed-size leaf
// sized by the (out of scope) text shaper; here it carries only what the
// scene and layout subsystems need to place it.
type Text struct {
	Id       ids.ComponentId
	Content  string
	FontSize float64
	Color    Color
	Width    float64
	Height   float64
}

func (Text) isComponent()         {}
func (c Text) ID() ids.ComponentId { return c.Id }

// View lays out its children along Direction, with optional explicit size
// (nil stretches to the parent-assigned box).
type View struct {
	Id           ids.ComponentId
	Children     []Child
	Width        *float64
	Height       *float64
	Direction    Direction
	Background   Color
	Padding      Padding
	BorderRadius BorderRadius
	BoxShadow    []BoxShadow
}

func (View) isComponent()         {}
func (c View) ID() ids.ComponentId { return c.Id }

// Rescaler has exactly one child, scaled to fit or fill its assigned box.
type Rescaler struct {
	Id              ids.ComponentId
	Mode            RescalerMode
	HorizontalAlign HorizontalAlign
	VerticalAlign   VerticalAlign
	Child           Component
}

func (Rescaler) isComponent()         {}
func (c Rescaler) ID() ids.ComponentId { return c.Id }

// Tiles arranges children in a grid maximizing tile size for the given
// aspect ratio.
type Tiles struct {
	Id              ids.ComponentId
	Children        []Component
	Margin          float64
	Padding         float64
	TileAspectRatioW float64
	TileAspectRatioH float64
	HorizontalAlign HorizontalAlign
}

func (Tiles) isComponent()         {}
func (c Tiles) ID() ids.ComponentId { return c.Id }

// WebView embeds a registered headless-browser renderer instance. Scene
// validation rejects a tree that uses one instance_id in two WebViews;
// the trees of other outputs are not checked for that instance_id.
type WebView struct {
	Id         ids.ComponentId
	InstanceId ids.RendererId
	Children   []Component
}

func (WebView) isComponent()         {}
func (c WebView) ID() ids.ComponentId { return c.Id }
