package layout

import (
	"testing"

	"github.com/smeltergo/compositor/internal/geom"
)

func TestFitScalePicksSmallerScale(t *testing.T) {
	// Child is 100x50 (2:1); box is 200x200 (square). Fit must shrink to
	// keep the whole child visible: limited by height (200/50=4) vs width
	// (200/100=2) -> fit picks the smaller, 2.
	got := FitScale(200, 200, 100, 50)
	if got != 2 {
		t.Fatalf("FitScale = %v, want 2", got)
	}
}

func TestFillScalePicksLargerScale(t *testing.T) {
	got := FillScale(200, 200, 100, 50)
	if got != 4 {
		t.Fatalf("FillScale = %v, want 4", got)
	}
}

func TestScaleDegenerateChildReturnsOne(t *testing.T) {
	if got := FitScale(100, 100, 0, 0); got != 1 {
		t.Fatalf("FitScale with zero-size child = %v, want 1", got)
	}
	if got := FillScale(100, 100, 0, 0); got != 1 {
		t.Fatalf("FillScale with zero-size child = %v, want 1", got)
	}
}

func TestTransformationMatrixCentersUnmovedBoxAtOrigin(t *testing.T) {
	l := Layout{Rect: geom.Rect{Top: 0, Left: 0, Width: 200, Height: 200}}
	m := l.TransformationMatrix(200, 200)
	// A box exactly matching the output, centered, should map to an
	// identity-like clip transform: translation terms near zero.
	if m[12] < -0.01 || m[12] > 0.01 || m[13] < -0.01 || m[13] > 0.01 {
		t.Fatalf("expected near-zero translation for a centered full-size box, got tx=%v ty=%v", m[12], m[13])
	}
}
