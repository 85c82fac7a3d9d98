package layout

import (
	"math"

	"github.com/smeltergo/compositor/internal/geom"
	"github.com/smeltergo/compositor/internal/scene"
)

// ComputeTileGrid implements spec.md §4.5's Tiles algorithm: given n
// children and a tile aspect ratio a:b, find the grid dimensions
// (rows, cols) that maximize tile size subject to rows*cols >= n, then
// place children left-to-right, top-to-bottom with the last row centered
// per horizontalAlign. Ported from the grid-search description in
// spec.md; original_source's tiles_component carries the same aspect-
// ratio-fit idea but no standalone grid-search function in the retrieved
// subset, so this is a direct, literal implementation of the spec's
// stated algorithm.
//
// box is the parent-assigned interior (W,H) the grid must fit inside.
func ComputeTileGrid(n int, aspectW, aspectH, margin, padding float64, box geom.Rect, align scene.HorizontalAlign) []geom.Rect {
	if n <= 0 {
		return nil
	}
	w, h := box.Width-2*padding, box.Height-2*padding

	bestCols := 1
	bestArea := -1.0
	bestTW, bestTH := 0.0, 0.0

	for cols := 1; cols <= n; cols++ {
		rows := int(math.Ceil(float64(n) / float64(cols)))

		availW := (w - float64(cols+1)*margin) / float64(cols)
		availH := (h - float64(rows+1)*margin) / float64(rows)
		if availW <= 0 || availH <= 0 {
			continue
		}

		tw, th := fitAspect(availW, availH, aspectW, aspectH)
		area := tw * th
		if area > bestArea {
			bestArea = area
			bestCols = cols
			bestTW, bestTH = tw, th
		}
	}

	cols := bestCols
	rows := int(math.Ceil(float64(n) / float64(cols)))
	tw, th := bestTW, bestTH
	if bestArea < 0 {
		// Degenerate box (too small for margins); fall back to an even
		// split so the algorithm never panics on pathological input.
		cols = int(math.Ceil(math.Sqrt(float64(n))))
		if cols < 1 {
			cols = 1
		}
		rows = int(math.Ceil(float64(n) / float64(cols)))
		tw = w / float64(cols)
		th = h / float64(rows)
	}

	rects := make([]geom.Rect, 0, n)
	for i := 0; i < n; i++ {
		row := i / cols
		col := i % cols

		itemsInRow := cols
		if row == rows-1 {
			itemsInRow = n - row*cols
		}
		rowWidth := float64(itemsInRow)*tw + float64(itemsInRow+1)*margin
		offsetX := alignOffset(align, w, rowWidth)

		left := box.Left + padding + offsetX + margin + float64(col)*(tw+margin)
		top := box.Top + padding + margin + float64(row)*(th+margin)

		rects = append(rects, geom.Rect{Top: top, Left: left, Width: tw, Height: th})
	}
	return rects
}

// fitAspect returns the largest (w,h) with w/h == aspectW/aspectH that
// fits within (maxW, maxH).
func fitAspect(maxW, maxH, aspectW, aspectH float64) (float64, float64) {
	if aspectW <= 0 || aspectH <= 0 {
		return maxW, maxH
	}
	w := maxW
	h := w * aspectH / aspectW
	if h > maxH {
		h = maxH
		w = h * aspectW / aspectH
	}
	return w, h
}

func alignOffset(align scene.HorizontalAlign, available, used float64) float64 {
	switch align {
	case scene.AlignLeft:
		return 0
	case scene.AlignRight:
		return available - used
	default: // scene.AlignHCenter
		return (available - used) / 2
	}
}
