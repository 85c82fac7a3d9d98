// Package frame defines the decoded media value types that flow through
// the queue, scene, and mixer subsystems: Frame/FrameData for video and
// SampleBatch/AudioSamples for audio. Codec-specific decode/encode lives
// entirely outside this package (see internal/glue); frame only describes
// the decoded shape.
package frame

import "time"

// Resolution is a pixel width/height pair.
type Resolution struct {
	Width  int
	Height int
}

// FrameData is a tagged union over the pixel layouts the compositor
// understands. Exactly one concrete type below implements it for any given
// Frame; callers type-switch on it rather than inspecting a kind field.
type FrameData interface {
	isFrameData()
}

// PlanarYUV420 is three 8-bit planes at 4:2:0 chroma subsampling.
type PlanarYUV420 struct {
	Y, U, V []byte
	// YStride, UStride, VStride describe row length in bytes; they may
	// exceed the logical plane width when the source pads rows.
	YStride, UStride, VStride int
}

func (PlanarYUV420) isFrameData() {}

// PlanarYUVJ420 is full-range (JPEG) 4:2:0, same byte layout as PlanarYUV420
// but with a different color range interpretation downstream.
type PlanarYUVJ420 struct {
	Y, U, V                   []byte
	YStride, UStride, VStride int
}

func (PlanarYUVJ420) isFrameData() {}

// InterleavedYUV422 packs luma/chroma into one interleaved byte plane
// (e.g. YUYV) at 4:2:2 chroma subsampling.
type InterleavedYUV422 struct {
	Data   []byte
	Stride int
}

func (InterleavedYUV422) isFrameData() {}

// GPUTextureHandle is an opaque reference to a texture the shader layer
// owns; the core never dereferences it, only threads it through.
type GPUTextureHandle uintptr

// RGBATexture is an RGBA frame already resident on the GPU.
type RGBATexture struct {
	Handle GPUTextureHandle
}

func (RGBATexture) isFrameData() {}

// NV12Texture is an NV12 (one luma plane, one interleaved chroma plane)
// frame already resident on the GPU.
type NV12Texture struct {
	Handle GPUTextureHandle
}

func (NV12Texture) isFrameData() {}

// Frame is one decoded video frame at a point in the output timeline.
type Frame struct {
	Data       FrameData
	Resolution Resolution
	PTS        time.Duration
}

// Samples is a tagged union over supported PCM sample layouts.
type Samples interface {
	isSamples()
	Len() int // sample frames (not raw values)
}

type Mono16 []int16

func (Mono16) isSamples()   {}
func (s Mono16) Len() int   { return len(s) }

type Stereo16 [][2]int16

func (Stereo16) isSamples() {}
func (s Stereo16) Len() int { return len(s) }

type Mono32 []int32

func (Mono32) isSamples() {}
func (s Mono32) Len() int { return len(s) }

type Stereo32 [][2]int32

func (Stereo32) isSamples() {}
func (s Stereo32) Len() int { return len(s) }

// SampleBatch is a contiguous run of PCM samples at a single sample rate,
// stamped at its output-timeline start PTS.
type SampleBatch struct {
	Samples    Samples
	StartPTS   time.Duration
	SampleRate uint32
}

// EndPTS derives the batch's exclusive end PTS from its sample count and rate.
func (b SampleBatch) EndPTS() time.Duration {
	if b.SampleRate == 0 || b.Samples == nil {
		return b.StartPTS
	}
	n := b.Samples.Len()
	return b.StartPTS + time.Duration(float64(n)/float64(b.SampleRate)*float64(time.Second))
}
