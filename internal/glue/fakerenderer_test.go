package glue

import (
	"context"
	"testing"

	"github.com/smeltergo/compositor/internal/frame"
	"github.com/smeltergo/compositor/internal/layout"
)

// fakeRenderer is a Renderer that never touches a GPU; it just records
// calls so tests in this package can assert on composite order without a
// real render backend.
type fakeRenderer struct {
	uploaded  []frame.Frame
	composits int
	lastLen   int
}

func (f *fakeRenderer) UploadTexture(ctx context.Context, fr frame.Frame) (GPUTexture, error) {
	f.uploaded = append(f.uploaded, fr)
	return GPUTexture(len(f.uploaded)), nil
}

func (f *fakeRenderer) Composite(ctx context.Context, layouts []layout.Layout, textures []GPUTexture, w, h int) error {
	f.composits++
	f.lastLen = len(layouts)
	return nil
}

func (f *fakeRenderer) ReadbackFrame(ctx context.Context) (frame.Frame, error) {
	return frame.Frame{Data: frame.RGBATexture{}, Resolution: frame.Resolution{Width: 1, Height: 1}}, nil
}

func TestFakeRendererSatisfiesInterface(t *testing.T) {
	var r Renderer = &fakeRenderer{}
	tex, err := r.UploadTexture(context.Background(), frame.Frame{})
	if err != nil {
		t.Fatalf("UploadTexture: %v", err)
	}
	if tex != 1 {
		t.Fatalf("expected first handle to be 1, got %v", tex)
	}

	if err := r.Composite(context.Background(), []layout.Layout{{}, {}}, []GPUTexture{tex}, 1920, 1080); err != nil {
		t.Fatalf("Composite: %v", err)
	}
	fr := r.(*fakeRenderer)
	if fr.composits != 1 || fr.lastLen != 2 {
		t.Fatalf("expected one composite call over 2 layouts, got composits=%d lastLen=%d", fr.composits, fr.lastLen)
	}

	if _, err := r.ReadbackFrame(context.Background()); err != nil {
		t.Fatalf("ReadbackFrame: %v", err)
	}
}
