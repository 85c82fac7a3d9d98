// Package layout converts a resolved scene tree into a flat list of Layout
// records: rectangles in output pixel coordinates with a rotation and a
// fill (solid color or input texture), plus the ordered list of input
// textures referenced. Ported from
// original_source/compositor_render/src/transformations/layout/
// box_layout.rs and the LayoutEngine design in spec.md §4.5.
package layout

import (
	"math"

	"github.com/smeltergo/compositor/internal/geom"
)

// Mat4 is a column-major 4x4 matrix, emitted in the layout for the (out of
// scope) GPU shader layer; LayoutEngine itself never touches a GPU.
type Mat4 [16]float32

// Content tags what a Layout rectangle is filled with.
type Content interface {
	isContent()
}

type ColorContent struct{ R, G, B, A uint8 }

func (ColorContent) isContent() {}

// ChildTextureContent names an index into the LayoutEngine's returned
// input-texture list.
type ChildTextureContent struct{ Index int }

func (ChildTextureContent) isContent() {}

// Layout is one flat, fully-resolved rectangle in the final output.
type Layout struct {
	Rect            geom.Rect
	RotationDegrees float64
	Content         Content
}

// TransformationMatrix computes the column-major clip-space matrix for
// this layout against an outputResolution (W,H), following the pipeline
// transcribed from box_layout.rs: translate to the rect's final centered
// position, rotate about Z, scale to the box's half-extents, then scale
// into clip space [-1,1].
func (l Layout) TransformationMatrix(outputW, outputH float64) Mat4 {
	W, H := outputW, outputH

	tx := -(W / 2) + l.Rect.Left + l.Rect.Width/2
	ty := H/2 - l.Rect.Top - l.Rect.Height/2

	translate := mat4Translate(tx, ty, 0)
	rotate := mat4RotateZ(l.RotationDegrees * math.Pi / 180)
	scaleBox := mat4Scale(l.Rect.Width/2, l.Rect.Height/2, 1)
	scaleClip := mat4Scale(2/W, 2/H, 1)

	return mat4Mul(scaleClip, mat4Mul(translate, mat4Mul(rotate, scaleBox)))
}

func mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func mat4Translate(x, y, z float64) Mat4 {
	m := mat4Identity()
	m[12], m[13], m[14] = float32(x), float32(y), float32(z)
	return m
}

func mat4Scale(x, y, z float64) Mat4 {
	m := mat4Identity()
	m[0], m[5], m[10] = float32(x), float32(y), float32(z)
	return m
}

func mat4RotateZ(radians float64) Mat4 {
	c, s := float32(math.Cos(radians)), float32(math.Sin(radians))
	m := mat4Identity()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// mat4Mul multiplies two column-major matrices, a*b.
func mat4Mul(a, b Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// FitScale implements the Rescaler `fit` mode: the largest scale that
// keeps the child's intrinsic box (cw,ch) entirely within (W,H).
func FitScale(w, h, cw, ch float64) float64 {
	if cw <= 0 || ch <= 0 {
		return 1
	}
	return math.Min(w/cw, h/ch)
}

// FillScale implements the Rescaler `fill` mode: the smallest scale that
// covers (W,H) entirely with the child's intrinsic box; overflow is
// clipped by the consumer, not by the layout engine.
func FillScale(w, h, cw, ch float64) float64 {
	if cw <= 0 || ch <= 0 {
		return 1
	}
	return math.Max(w/cw, h/ch)
}
