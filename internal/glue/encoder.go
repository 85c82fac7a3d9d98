package glue

import (
	"context"

	"github.com/smeltergo/compositor/internal/frame"
)

// Encoder turns a decoded Frame or SampleBatch back into compressed
// access units ready for a Transport to frame onto the wire.
type Encoder interface {
	Codec() Codec
	EncodeVideo(ctx context.Context, f frame.Frame) ([]byte, error)
	EncodeAudio(ctx context.Context, b frame.SampleBatch) ([]byte, error)
	Close() error
}
