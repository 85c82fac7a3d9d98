package glue

import (
	"context"

	"github.com/smeltergo/compositor/internal/frame"
	"github.com/smeltergo/compositor/internal/layout"
)

// GPUTexture is an opaque handle to a texture resident on the render
// backend; the core never dereferences it, only threads it through
// LayoutEngine's output. Distinct from frame.GPUTextureHandle (which
// tags decoded input frames already on the GPU) — this one tags render
// targets and intermediate composite surfaces.
type GPUTexture uintptr

// Renderer executes the actual shader/composite work LayoutEngine's flat
// Layout list describes. No implementation exists in this tree — GPU
// shader execution is an explicit non-goal — but the interface is
// exercised by a fake in fakerenderer_test.go so the interface can be
// tested without a real GPU.
type Renderer interface {
	// UploadTexture makes a decoded frame available to the renderer,
	// returning a handle Composite can reference.
	UploadTexture(ctx context.Context, f frame.Frame) (GPUTexture, error)

	// Composite draws the given layouts, resolving each
	// layout.ChildTextureContent index against the textures slice, into
	// an output-resolution render target.
	Composite(ctx context.Context, layouts []layout.Layout, textures []GPUTexture, outputWidth, outputHeight int) error

	// ReadbackFrame reads the most recently composited render target back
	// into a decoded Frame ready for an Encoder.
	ReadbackFrame(ctx context.Context) (frame.Frame, error)
}
