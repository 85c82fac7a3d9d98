package scene

// InterpolateFloat64 is the base scalar rule every numeric field rule
// composes from: start + (end-start)*state.
func InterpolateFloat64(start, end, state float64) float64 {
	return start + (end-start)*state
}

// InterpolateOptionFloat64 implements spec.md §4.4's Option<T> rule: if
// both are present, interpolate; otherwise adopt end verbatim.
func InterpolateOptionFloat64(start, end *float64, state float64) *float64 {
	if start == nil || end == nil {
		return end
	}
	v := InterpolateFloat64(*start, *end, state)
	return &v
}

func interpolateColor(start, end Color, state float64) Color {
	return Color{
		R: interpolateByte(start.R, end.R, state),
		G: interpolateByte(start.G, end.G, state),
		B: interpolateByte(start.B, end.B, state),
		A: interpolateByte(start.A, end.A, state),
	}
}

func interpolateByte(start, end uint8, state float64) uint8 {
	v := InterpolateFloat64(float64(start), float64(end), state)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

func interpolatePadding(start, end Padding, state float64) Padding {
	return Padding{
		Top:    InterpolateFloat64(start.Top, end.Top, state),
		Right:  InterpolateFloat64(start.Right, end.Right, state),
		Bottom: InterpolateFloat64(start.Bottom, end.Bottom, state),
		Left:   InterpolateFloat64(start.Left, end.Left, state),
	}
}

func interpolateBorderRadius(start, end BorderRadius, state float64) BorderRadius {
	return BorderRadius{
		TopLeft:     InterpolateFloat64(start.TopLeft, end.TopLeft, state),
		TopRight:    InterpolateFloat64(start.TopRight, end.TopRight, state),
		BottomRight: InterpolateFloat64(start.BottomRight, end.BottomRight, state),
		BottomLeft:  InterpolateFloat64(start.BottomLeft, end.BottomLeft, state),
	}
}

func interpolateBoxShadow(start, end BoxShadow, state float64) BoxShadow {
	return BoxShadow{
		OffsetX:    InterpolateFloat64(start.OffsetX, end.OffsetX, state),
		OffsetY:    InterpolateFloat64(start.OffsetY, end.OffsetY, state),
		BlurRadius: InterpolateFloat64(start.BlurRadius, end.BlurRadius, state),
		Color:      end.Color,
	}
}

// interpolateBoxShadows implements spec.md §4.4's `Vec<BoxShadow>` rule:
// zip-interpolate the common prefix, then append whatever end has beyond
// that; extra start entries beyond end's length are simply dropped.
func interpolateBoxShadows(start, end []BoxShadow, state float64) []BoxShadow {
	n := len(start)
	if len(end) < n {
		n = len(end)
	}
	out := make([]BoxShadow, 0, len(end))
	for i := 0; i < n; i++ {
		out = append(out, interpolateBoxShadow(start[i], end[i], state))
	}
	out = append(out, end[n:]...)
	return out
}

// interpolatePosition implements the "nested variants snap to end on
// mismatch" rule from spec.md §4.4 (e.g. Position::Static vs ::Absolute).
func interpolatePosition(start, end Position, state float64) Position {
	sa, sok := start.(AbsolutePosition)
	ea, eok := end.(AbsolutePosition)
	if !sok || !eok {
		return end
	}
	return AbsolutePosition{
		Top:    InterpolateOptionFloat64(sa.Top, ea.Top, state),
		Bottom: InterpolateOptionFloat64(sa.Bottom, ea.Bottom, state),
		Left:   InterpolateOptionFloat64(sa.Left, ea.Left, state),
		Right:  InterpolateOptionFloat64(sa.Right, ea.Right, state),
		Width:  InterpolateOptionFloat64(sa.Width, ea.Width, state),
		Height: InterpolateOptionFloat64(sa.Height, ea.Height, state),
	}
}

// InterpolateComponent produces the component as it should render at the
// given eased state, given a start/end pair already validated to share a
// ComponentId and component kind (spec.md §3's "Transition's start and end
// component kinds must match" invariant — enforced at update time, not
// here). Enum-like kind mismatches that slip through still snap to end
// rather than panicking, matching the "document as user-visible contract"
// design note.
func InterpolateComponent(start, end Component, state float64) Component {
	switch e := end.(type) {
	case InputStream:
		s, ok := start.(InputStream)
		if !ok {
			return end
		}
		e.Width = InterpolateOptionFloat64(s.Width, e.Width, state)
		e.Height = InterpolateOptionFloat64(s.Height, e.Height, state)
		return e

	case View:
		s, ok := start.(View)
		if !ok {
			return end
		}
		e.Width = InterpolateOptionFloat64(s.Width, e.Width, state)
		e.Height = InterpolateOptionFloat64(s.Height, e.Height, state)
		e.Background = interpolateColor(s.Background, e.Background, state)
		e.Padding = interpolatePadding(s.Padding, e.Padding, state)
		e.BorderRadius = interpolateBorderRadius(s.BorderRadius, e.BorderRadius, state)
		e.BoxShadow = interpolateBoxShadows(s.BoxShadow, e.BoxShadow, state)
		e.Children = interpolateChildren(s.Children, e.Children, state)
		return e

	case Shader:
		s, ok := start.(Shader)
		if !ok {
			return end
		}
		e.Width = InterpolateFloat64(s.Width, e.Width, state)
		e.Height = InterpolateFloat64(s.Height, e.Height, state)
		return e

	case Text:
		s, ok := start.(Text)
		if !ok {
			return end
		}
		e.FontSize = InterpolateFloat64(s.FontSize, e.FontSize, state)
		e.Color = interpolateColor(s.Color, e.Color, state)
		return e

	case Tiles:
		s, ok := start.(Tiles)
		if !ok {
			return end
		}
		e.Margin = InterpolateFloat64(s.Margin, e.Margin, state)
		e.Padding = InterpolateFloat64(s.Padding, e.Padding, state)
		return e

	default:
		// Image, Rescaler, WebView carry no spec-listed interpolatable
		// scalar fields of their own; structural changes to them snap to
		// end, matching "enums without meaningful interpolation snap to
		// end".
		return end
	}
}

// interpolateChildren zip-interpolates children sharing a ComponentId
// between start and end lists; children only present in end (no start
// match) adopt end verbatim — same "appear immediately" rule used for
// Tiles layout rectangles (see buildTileOverrides in internal/pipeline).
func interpolateChildren(start, end []Child, state float64) []Child {
	startByID := make(map[string]Child, len(start))
	for _, c := range start {
		if c.Component != nil {
			startByID[string(c.Component.ID())] = c
		}
	}

	out := make([]Child, len(end))
	for i, ec := range end {
		sc, ok := startByID[string(ec.Component.ID())]
		if !ok || ec.Component.ID() == "" {
			out[i] = ec
			continue
		}
		out[i] = Child{
			Component: InterpolateComponent(sc.Component, ec.Component, state),
			Position:  interpolateChildPosition(sc.Position, ec.Position, state),
		}
	}
	return out
}

func interpolateChildPosition(start, end Position, state float64) Position {
	if start == nil || end == nil {
		return end
	}
	return interpolatePosition(start, end, state)
}
