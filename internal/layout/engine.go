package layout

import (
	"github.com/smeltergo/compositor/internal/frame"
	"github.com/smeltergo/compositor/internal/geom"
	"github.com/smeltergo/compositor/internal/ids"
	"github.com/smeltergo/compositor/internal/scene"
)

// TextureKind tags whether a TextureRef names a live input or a static
// registered image asset. Spec.md §4.5 only describes input-texture
// indexing explicitly; images are folded into the same ordered reference
// list because they resolve through an identical "known resolution or
// fallback to background color" rule (scenario unregistering).
type TextureKind int

const (
	TextureInput TextureKind = iota
	TextureImage
)

type TextureRef struct {
	Kind    TextureKind
	InputId ids.InputId
	ImageId ids.RendererId
}

// Engine flattens a resolved scene tree into Layout records. Grounded on
// original_source/compositor_render/src/transformations/layout (box_layout
// fit/translate pipeline) and the walk algorithm described in spec.md §4.5.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Resolutions supplies known intrinsic sizes for InputStream/Image leaves
// (missing entries mean "not yet available", which falls back to the
// nearest ancestor's background color).
type Resolutions struct {
	Inputs map[ids.InputId]frame.Resolution
	Images map[ids.RendererId]frame.Resolution
}

// Layouts walks root depth-first inside the given output box, returning the
// flattened Layout list and the ordered texture references it used.
func (e *Engine) Layouts(root scene.Component, box geom.Rect, res Resolutions, tileOverrides map[ids.ComponentId]geom.TileOverride) ([]Layout, []TextureRef) {
	w := &walker{res: res, tileOverrides: tileOverrides}
	w.walk(root, box, ColorContent{})
	return w.layouts, w.textures
}

type walker struct {
	res           Resolutions
	tileOverrides map[ids.ComponentId]geom.TileOverride
	layouts       []Layout
	textures      []TextureRef
}

func (w *walker) walk(c scene.Component, box geom.Rect, ancestorBG Content) {
	switch n := c.(type) {
	case scene.InputStream:
		w.leafInput(n, box, ancestorBG)

	case scene.Image:
		w.leafImage(n, box, ancestorBG)

	case scene.Text:
		w.layouts = append(w.layouts, Layout{Rect: box, Content: ancestorBG})

	case scene.Shader:
		// Shader/WebView execute off-graph (the GPU layer owns their
		// actual pixels); LayoutEngine only reserves their box and keeps
		// walking their children so nested InputStream leaves still get
		// indexed.
		w.layouts = append(w.layouts, Layout{Rect: box, Content: ancestorBG})
		for _, child := range n.Children {
			w.walk(child, box, ancestorBG)
		}

	case scene.WebView:
		w.layouts = append(w.layouts, Layout{Rect: box, Content: ancestorBG})
		for _, child := range n.Children {
			w.walk(child, box, ancestorBG)
		}

	case scene.View:
		w.walkView(n, box)

	case scene.Rescaler:
		w.walkRescaler(n, box, ancestorBG)

	case scene.Tiles:
		w.walkTiles(n, box, ancestorBG)
	}
}

func (w *walker) leafInput(n scene.InputStream, box geom.Rect, ancestorBG Content) {
	_, known := w.res.Inputs[n.InputId]
	if !known {
		w.layouts = append(w.layouts, Layout{Rect: box, Content: ancestorBG})
		return
	}
	idx := len(w.textures)
	w.textures = append(w.textures, TextureRef{Kind: TextureInput, InputId: n.InputId})
	w.layouts = append(w.layouts, Layout{Rect: box, Content: ChildTextureContent{Index: idx}})
}

func (w *walker) leafImage(n scene.Image, box geom.Rect, ancestorBG Content) {
	_, known := w.res.Images[n.ImageId]
	if !known {
		w.layouts = append(w.layouts, Layout{Rect: box, Content: ancestorBG})
		return
	}
	idx := len(w.textures)
	w.textures = append(w.textures, TextureRef{Kind: TextureImage, ImageId: n.ImageId})
	w.layouts = append(w.layouts, Layout{Rect: box, Content: ChildTextureContent{Index: idx}})
}

// walkView lays out static children sequentially along Direction and
// absolute children relative to the interior, per spec.md §4.5.
func (w *walker) walkView(n scene.View, box geom.Rect) {
	bg := Content(ColorContent{R: n.Background.R, G: n.Background.G, B: n.Background.B, A: n.Background.A})
	w.layouts = append(w.layouts, Layout{Rect: box, Content: bg})

	interior := geom.Rect{
		Top:    box.Top + n.Padding.Top,
		Left:   box.Left + n.Padding.Left,
		Width:  box.Width - n.Padding.Left - n.Padding.Right,
		Height: box.Height - n.Padding.Top - n.Padding.Bottom,
	}

	var staticChildren []scene.Child
	var absoluteChildren []scene.Child
	for _, ch := range n.Children {
		if ch.Position == nil {
			staticChildren = append(staticChildren, ch)
			continue
		}
		switch ch.Position.(type) {
		case scene.AbsolutePosition:
			absoluteChildren = append(absoluteChildren, ch)
		default:
			staticChildren = append(staticChildren, ch)
		}
	}

	w.layoutStaticChildren(staticChildren, interior, n.Direction, bg)
	for _, ch := range absoluteChildren {
		w.layoutAbsoluteChild(ch, interior, bg)
	}
}

func (w *walker) layoutStaticChildren(children []scene.Child, interior geom.Rect, dir scene.Direction, bg Content) {
	n := len(children)
	if n == 0 {
		return
	}

	mainAxisTotal := interior.Width
	if dir == scene.DirectionColumn {
		mainAxisTotal = interior.Height
	}

	type sized struct {
		child scene.Child
		main  float64 // nil-equivalent: -1 means "stretch"
	}
	items := make([]sized, n)
	fixedTotal := 0.0
	stretchCount := 0
	for i, ch := range children {
		cw, chh := intrinsicSize(ch.Component)
		main := cw
		if dir == scene.DirectionColumn {
			main = chh
		}
		if main <= 0 {
			items[i] = sized{child: ch, main: -1}
			stretchCount++
		} else {
			items[i] = sized{child: ch, main: main}
			fixedTotal += main
		}
	}

	remaining := mainAxisTotal - fixedTotal
	stretchShare := 0.0
	if stretchCount > 0 && remaining > 0 {
		stretchShare = remaining / float64(stretchCount)
	}

	pos := 0.0
	for _, it := range items {
		main := it.main
		if main < 0 {
			main = stretchShare
		}

		var box geom.Rect
		if dir == scene.DirectionRow {
			box = geom.Rect{Top: interior.Top, Left: interior.Left + pos, Width: main, Height: interior.Height}
		} else {
			box = geom.Rect{Top: interior.Top + pos, Left: interior.Left, Width: interior.Width, Height: main}
		}
		w.walk(it.child.Component, box, bg)
		pos += main
	}
}

func (w *walker) layoutAbsoluteChild(ch scene.Child, interior geom.Rect, bg Content) {
	ap := ch.Position.(scene.AbsolutePosition)
	cw, chh := intrinsicSize(ch.Component)
	if ap.Width != nil {
		cw = *ap.Width
	}
	if ap.Height != nil {
		chh = *ap.Height
	}

	left := interior.Left
	switch {
	case ap.Left != nil:
		left = interior.Left + *ap.Left
	case ap.Right != nil:
		left = interior.Left + interior.Width - *ap.Right - cw
	}

	top := interior.Top
	switch {
	case ap.Top != nil:
		top = interior.Top + *ap.Top
	case ap.Bottom != nil:
		top = interior.Top + interior.Height - *ap.Bottom - chh
	}

	w.walk(ch.Component, geom.Rect{Top: top, Left: left, Width: cw, Height: chh}, bg)
}

func (w *walker) walkRescaler(n scene.Rescaler, box geom.Rect, bg Content) {
	cw, ch := intrinsicSize(n.Child)
	if cw <= 0 {
		cw = box.Width
	}
	if ch <= 0 {
		ch = box.Height
	}

	var s float64
	if n.Mode == scene.RescalerFill {
		s = FillScale(box.Width, box.Height, cw, ch)
	} else {
		s = FitScale(box.Width, box.Height, cw, ch)
	}

	scaledW, scaledH := cw*s, ch*s

	left := box.Left + (box.Width-scaledW)/2
	switch n.HorizontalAlign {
	case scene.AlignLeft:
		left = box.Left
	case scene.AlignRight:
		left = box.Left + box.Width - scaledW
	}

	top := box.Top + (box.Height-scaledH)/2
	switch n.VerticalAlign {
	case scene.AlignTop:
		top = box.Top
	case scene.AlignBottom:
		top = box.Top + box.Height - scaledH
	}

	w.walk(n.Child, geom.Rect{Top: top, Left: left, Width: scaledW, Height: scaledH}, bg)
}

func (w *walker) walkTiles(n scene.Tiles, box geom.Rect, ancestorBG Content) {
	if override, ok := w.tileOverrides[n.Id]; ok {
		for _, id := range override.Order {
			rect, ok := override.Rects[id]
			if !ok {
				continue
			}
			if child := findChildByID(n.Children, id); child != nil {
				w.walk(child, rect, ancestorBG)
			}
		}
		return
	}

	rects := ComputeTileGrid(len(n.Children), n.TileAspectRatioW, n.TileAspectRatioH, n.Margin, n.Padding, box, n.HorizontalAlign)
	for i, child := range n.Children {
		if i >= len(rects) {
			break
		}
		w.walk(child, rects[i], ancestorBG)
	}
}

func findChildByID(children []scene.Component, id ids.ComponentId) scene.Component {
	for _, c := range children {
		if c.ID() == id {
			return c
		}
	}
	return nil
}

// intrinsicSize returns a component's own declared size, or (0,0) meaning
// "unknown/stretch" for the purposes of static-flow layout.
func intrinsicSize(c scene.Component) (float64, float64) {
	switch n := c.(type) {
	case scene.InputStream:
		w, h := 0.0, 0.0
		if n.Width != nil {
			w = *n.Width
		}
		if n.Height != nil {
			h = *n.Height
		}
		return w, h
	case scene.Shader:
		return n.Width, n.Height
	case scene.Text:
		return n.Width, n.Height
	case scene.View:
		w, h := 0.0, 0.0
		if n.Width != nil {
			w = *n.Width
		}
		if n.Height != nil {
			h = *n.Height
		}
		return w, h
	default:
		return 0, 0
	}
}
