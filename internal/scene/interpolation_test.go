package scene

import "testing"

func TestInterpolateFloat64(t *testing.T) {
	if got := InterpolateFloat64(0, 10, 0.5); got != 5 {
		t.Fatalf("InterpolateFloat64 = %v, want 5", got)
	}
}

func TestInterpolateOptionFloat64NilAdoptsEnd(t *testing.T) {
	end := w(10)
	if got := InterpolateOptionFloat64(nil, end, 0.5); got != end {
		t.Fatalf("nil start should adopt end pointer verbatim")
	}
}

func TestInterpolateOptionFloat64BothPresent(t *testing.T) {
	got := InterpolateOptionFloat64(w(0), w(10), 0.5)
	if *got != 5 {
		t.Fatalf("InterpolateOptionFloat64 = %v, want 5", *got)
	}
}

func TestInterpolateComponentViewRecursesIntoChildren(t *testing.T) {
	start := View{
		Id:       "v",
		Children: []Child{{Component: InputStream{Id: "c", Width: w(0)}}},
	}
	end := View{
		Id:       "v",
		Children: []Child{{Component: InputStream{Id: "c", Width: w(100)}}},
	}

	got := InterpolateComponent(start, end, 0.5).(View)
	childWidth := *got.Children[0].Component.(InputStream).Width
	if childWidth != 50 {
		t.Fatalf("nested child width = %v, want 50", childWidth)
	}
}

func TestInterpolateComponentKindMismatchSnapsToEnd(t *testing.T) {
	end := Text{Id: "x", Content: "hi"}
	got := InterpolateComponent(InputStream{Id: "x"}, end, 0.5)
	if got != end {
		t.Fatalf("kind mismatch should snap directly to end, got %v", got)
	}
}

func TestInterpolateComponentViewInterpolatesBorderRadiusAndBoxShadow(t *testing.T) {
	start := View{
		Id:           "v",
		BorderRadius: BorderRadius{TopLeft: 0, TopRight: 0, BottomRight: 0, BottomLeft: 0},
		BoxShadow:    []BoxShadow{{OffsetX: 0, OffsetY: 0, BlurRadius: 0, Color: Color{A: 255}}},
	}
	end := View{
		Id:           "v",
		BorderRadius: BorderRadius{TopLeft: 10, TopRight: 10, BottomRight: 10, BottomLeft: 10},
		BoxShadow:    []BoxShadow{{OffsetX: 10, OffsetY: 10, BlurRadius: 10, Color: Color{A: 255}}},
	}

	got := InterpolateComponent(start, end, 0.5).(View)
	if got.BorderRadius.TopLeft != 5 {
		t.Fatalf("BorderRadius.TopLeft = %v, want 5", got.BorderRadius.TopLeft)
	}
	if len(got.BoxShadow) != 1 || got.BoxShadow[0].OffsetX != 5 {
		t.Fatalf("BoxShadow[0].OffsetX = %v, want 5", got.BoxShadow)
	}
}

func TestInterpolateBoxShadowsAppendsEndRemainder(t *testing.T) {
	start := []BoxShadow{{OffsetX: 0}}
	end := []BoxShadow{{OffsetX: 10}, {OffsetX: 20}}

	got := interpolateBoxShadows(start, end, 0.5)
	if len(got) != 2 {
		t.Fatalf("expected 2 shadows, got %d", len(got))
	}
	if got[0].OffsetX != 5 {
		t.Fatalf("common-prefix shadow should interpolate, got %v", got[0].OffsetX)
	}
	if got[1] != end[1] {
		t.Fatalf("end-only shadow should appear verbatim, got %v", got[1])
	}
}

func TestInterpolateBoxShadowsDropsExtraStartEntries(t *testing.T) {
	start := []BoxShadow{{OffsetX: 0}, {OffsetX: 100}}
	end := []BoxShadow{{OffsetX: 10}}

	got := interpolateBoxShadows(start, end, 0.5)
	if len(got) != 1 {
		t.Fatalf("expected extra start entry to be dropped, got %d entries", len(got))
	}
}

func TestInterpolateChildrenNewChildAdoptsEndVerbatim(t *testing.T) {
	start := []Child{{Component: InputStream{Id: "a"}}}
	end := []Child{
		{Component: InputStream{Id: "a"}},
		{Component: InputStream{Id: "b", Width: w(42)}},
	}
	got := interpolateChildren(start, end, 0.1)
	if len(got) != 2 {
		t.Fatalf("expected 2 children, got %d", len(got))
	}
	if *got[1].Component.(InputStream).Width != 42 {
		t.Fatal("newly-added child should appear at its end value immediately")
	}
}
