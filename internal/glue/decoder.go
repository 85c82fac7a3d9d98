// Package glue defines the thin adapter boundary between the compositor
// core and everything spec.md §1 treats as an external collaborator:
// codec decode/encode, RTP/MP4/WHIP transport framing, and the GPU
// shader/composite layer. Nothing in this package runs real codecs or
// touches a GPU; it exists so internal/pipeline can be written against
// stable interfaces while those backends are supplied separately.
package glue

import (
	"context"

	"github.com/smeltergo/compositor/internal/frame"
)

// RTP payload types named in spec.md §6's wire format table.
const (
	PayloadTypeH264 uint8 = 96
	PayloadTypeOpus uint8 = 97
)

// Codec names the compressed format a Decoder/Encoder handles. Only the
// names spec.md lists are defined; no implementation ships for any of
// them (codec-specific decode/encode is an explicit non-goal).
type Codec string

const (
	CodecH264 Codec = "h264"
	CodecOpus Codec = "opus"
	CodecAAC  Codec = "aac"
)

// Decoder turns compressed access units into decoded Frames or
// SampleBatches. Implementations own their own internal buffering;
// DecodeVideo/DecodeAudio may return a zero-value unit with a nil error
// when they need more input before they can emit one.
type Decoder interface {
	Codec() Codec
	DecodeVideo(ctx context.Context, accessUnit []byte) (frame.Frame, error)
	DecodeAudio(ctx context.Context, accessUnit []byte) (frame.SampleBatch, error)
	Close() error
}
