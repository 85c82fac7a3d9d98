package scene

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/smeltergo/compositor/internal/ids"
)

// Wire-level component kind discriminators, matching `original_source`'s
// `#[serde(tag = "type")]` convention used throughout compositor_common's
// scene/text_spec.rs (the top-level Component enum itself wasn't in the
// retrieved subset, so its own discriminator strings are reconstructed
// from the same snake_case convention).
const (
	jsonTypeInputStream = "input_stream"
	jsonTypeShader      = "shader"
	jsonTypeImage       = "image"
	jsonTypeText        = "text"
	jsonTypeView        = "view"
	jsonTypeRescaler    = "rescaler"
	jsonTypeTiles       = "tiles"
	jsonTypeWebView     = "web_view"
)

type componentEnvelope struct {
	Type string `json:"type"`
}

type childWire struct {
	Component json.RawMessage `json:"component"`
	Position  *positionWire   `json:"position,omitempty"`
}

type positionWire struct {
	Kind   string   `json:"kind"` // "static" | "absolute"
	Top    *float64 `json:"top,omitempty"`
	Bottom *float64 `json:"bottom,omitempty"`
	Left   *float64 `json:"left,omitempty"`
	Right  *float64 `json:"right,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

type colorWire struct {
	R, G, B, A uint8
}

type paddingWire struct {
	Top, Right, Bottom, Left float64
}

type borderRadiusWire struct {
	TopLeft     float64 `json:"top_left"`
	TopRight    float64 `json:"top_right"`
	BottomRight float64 `json:"bottom_right"`
	BottomLeft  float64 `json:"bottom_left"`
}

type boxShadowWire struct {
	OffsetX    float64   `json:"offset_x"`
	OffsetY    float64   `json:"offset_y"`
	BlurRadius float64   `json:"blur_radius"`
	Color      colorWire `json:"color"`
}

// DecodeComponent parses one node of a scene tree from the wire JSON
// format POST /api/output/{id}/register and .../update carry in their
// `video.root` field, per spec.md §6.
func DecodeComponent(data json.RawMessage) (Component, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var env componentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode component envelope: %w", err)
	}

	switch env.Type {
	case jsonTypeInputStream:
		var w struct {
			Id      ids.ComponentId `json:"id"`
			InputId ids.InputId     `json:"input_id"`
			Width   *float64        `json:"width,omitempty"`
			Height  *float64        `json:"height,omitempty"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode input_stream: %w", err)
		}
		return InputStream{Id: w.Id, InputId: w.InputId, Width: w.Width, Height: w.Height}, nil

	case jsonTypeShader:
		var w struct {
			Id       ids.ComponentId  `json:"id"`
			ShaderId ids.RendererId   `json:"shader_id"`
			Params   map[string]any   `json:"params,omitempty"`
			Width    float64          `json:"width"`
			Height   float64          `json:"height"`
			Children []json.RawMessage `json:"children,omitempty"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode shader: %w", err)
		}
		children, err := decodeChildComponents(w.Children)
		if err != nil {
			return nil, err
		}
		return Shader{Id: w.Id, ShaderId: w.ShaderId, Params: w.Params, Width: w.Width, Height: w.Height, Children: children}, nil

	case jsonTypeImage:
		var w struct {
			Id      ids.ComponentId `json:"id"`
			ImageId ids.RendererId  `json:"image_id"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		return Image{Id: w.Id, ImageId: w.ImageId}, nil

	case jsonTypeText:
		var w struct {
			Id       ids.ComponentId `json:"id"`
			Content  string          `json:"content"`
			FontSize float64         `json:"font_size"`
			Color    colorWire       `json:"color"`
			Width    float64         `json:"width"`
			Height   float64         `json:"height"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode text: %w", err)
		}
		return Text{Id: w.Id, Content: w.Content, FontSize: w.FontSize, Color: Color(w.Color), Width: w.Width, Height: w.Height}, nil

	case jsonTypeView:
		var w struct {
			Id           ids.ComponentId `json:"id"`
			Children     []childWire     `json:"children,omitempty"`
			Width        *float64        `json:"width,omitempty"`
			Height       *float64        `json:"height,omitempty"`
			Direction    string          `json:"direction,omitempty"`
			Background   colorWire       `json:"background,omitempty"`
			Padding      paddingWire     `json:"padding,omitempty"`
			BorderRadius borderRadiusWire `json:"border_radius,omitempty"`
			BoxShadow    []boxShadowWire  `json:"box_shadow,omitempty"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode view: %w", err)
		}
		children := make([]Child, 0, len(w.Children))
		for _, cw := range w.Children {
			comp, err := DecodeComponent(cw.Component)
			if err != nil {
				return nil, err
			}
			children = append(children, Child{Component: comp, Position: decodePosition(cw.Position)})
		}
		dir := DirectionRow
		if w.Direction == "column" {
			dir = DirectionColumn
		}
		shadows := make([]BoxShadow, 0, len(w.BoxShadow))
		for _, sw := range w.BoxShadow {
			shadows = append(shadows, BoxShadow{OffsetX: sw.OffsetX, OffsetY: sw.OffsetY, BlurRadius: sw.BlurRadius, Color: Color(sw.Color)})
		}
		return View{
			Id:           w.Id,
			Children:     children,
			Width:        w.Width,
			Height:       w.Height,
			Direction:    dir,
			Background:   Color(w.Background),
			Padding:      Padding(w.Padding),
			BorderRadius: BorderRadius(w.BorderRadius),
			BoxShadow:    shadows,
		}, nil

	case jsonTypeRescaler:
		var w struct {
			Id              ids.ComponentId `json:"id"`
			Mode            string          `json:"mode,omitempty"`
			HorizontalAlign string          `json:"horizontal_align,omitempty"`
			VerticalAlign   string          `json:"vertical_align,omitempty"`
			Child           json.RawMessage `json:"child"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode rescaler: %w", err)
		}
		child, err := DecodeComponent(w.Child)
		if err != nil {
			return nil, err
		}
		return Rescaler{
			Id:              w.Id,
			Mode:            decodeRescalerMode(w.Mode),
			HorizontalAlign: decodeHorizontalAlign(w.HorizontalAlign),
			VerticalAlign:   decodeVerticalAlign(w.VerticalAlign),
			Child:           child,
		}, nil

	case jsonTypeTiles:
		var w struct {
			Id               ids.ComponentId   `json:"id"`
			Children         []json.RawMessage `json:"children,omitempty"`
			Margin           float64           `json:"margin,omitempty"`
			Padding          float64           `json:"padding,omitempty"`
			TileAspectRatioW float64           `json:"tile_aspect_ratio_w,omitempty"`
			TileAspectRatioH float64           `json:"tile_aspect_ratio_h,omitempty"`
			HorizontalAlign  string            `json:"horizontal_align,omitempty"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode tiles: %w", err)
		}
		children, err := decodeChildComponents(w.Children)
		if err != nil {
			return nil, err
		}
		ratioW, ratioH := w.TileAspectRatioW, w.TileAspectRatioH
		if ratioW == 0 && ratioH == 0 {
			ratioW, ratioH = 1, 1
		}
		return Tiles{
			Id:               w.Id,
			Children:         children,
			Margin:           w.Margin,
			Padding:          w.Padding,
			TileAspectRatioW: ratioW,
			TileAspectRatioH: ratioH,
			HorizontalAlign:  decodeHorizontalAlign(w.HorizontalAlign),
		}, nil

	case jsonTypeWebView:
		var w struct {
			Id         ids.ComponentId   `json:"id"`
			InstanceId ids.RendererId    `json:"instance_id"`
			Children   []json.RawMessage `json:"children,omitempty"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode web_view: %w", err)
		}
		children, err := decodeChildComponents(w.Children)
		if err != nil {
			return nil, err
		}
		return WebView{Id: w.Id, InstanceId: w.InstanceId, Children: children}, nil

	default:
		return nil, fmt.Errorf("unknown component type %q", env.Type)
	}
}

func decodeChildComponents(raw []json.RawMessage) ([]Component, error) {
	out := make([]Component, 0, len(raw))
	for _, r := range raw {
		c, err := DecodeComponent(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func decodePosition(p *positionWire) Position {
	if p == nil || p.Kind != "absolute" {
		return StaticPosition{}
	}
	return AbsolutePosition{Top: p.Top, Bottom: p.Bottom, Left: p.Left, Right: p.Right, Width: p.Width, Height: p.Height}
}

func decodeRescalerMode(s string) RescalerMode {
	if s == "fill" {
		return RescalerFill
	}
	return RescalerFit
}

func decodeHorizontalAlign(s string) HorizontalAlign {
	switch s {
	case "center":
		return AlignHCenter
	case "right":
		return AlignRight
	default:
		return AlignLeft
	}
}

func decodeVerticalAlign(s string) VerticalAlign {
	switch s {
	case "center":
		return AlignVCenter
	case "bottom":
		return AlignBottom
	default:
		return AlignTop
	}
}

// DecodeTransitions parses the `schedule_update`-style declared-transitions
// map keyed by ComponentId, as carried alongside a scene update.
func DecodeTransitions(raw map[string]TransitionWire) map[ids.ComponentId]Transition {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[ids.ComponentId]Transition, len(raw))
	for cid, tw := range raw {
		out[ids.ComponentId(cid)] = Transition{
			Duration: time.Duration(tw.DurationMs) * time.Millisecond,
			Easing:   tw.toEasing(),
		}
	}
	return out
}

// TransitionWire is the wire shape of one entry in a scene update's
// declared-transitions map.
type TransitionWire struct {
	DurationMs int64      `json:"duration_ms"`
	Easing     easingWire `json:"easing"`
}

type easingWire struct {
	Kind   string  `json:"kind"`
	P1     float64 `json:"p1,omitempty"`
	P2     float64 `json:"p2,omitempty"`
	P3     float64 `json:"p3,omitempty"`
	P4     float64 `json:"p4,omitempty"`
	Script string  `json:"script,omitempty"`
}

func (e easingWire) toEasing() Easing {
	kind := EasingLinear
	switch e.Kind {
	case "bounce":
		kind = EasingBounce
	case "cubic_bezier":
		kind = EasingCubicBezier
	case "script":
		kind = EasingScript
	}
	p1, p3 := e.P1, e.P3
	if kind == EasingCubicBezier {
		p1, p3 = math.Min(math.Max(p1, 0), 1), math.Min(math.Max(p3, 0), 1)
	}
	return Easing{Kind: kind, P1: p1, P2: e.P2, P3: p3, P4: e.P4, Script: e.Script}
}
