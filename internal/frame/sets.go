package frame

import (
	"time"

	"github.com/smeltergo/compositor/internal/ids"
)

// FrameSet maps InputId to at-most-one Frame, stamped with the tick's
// dispatch PTS. A missing input means no frame was available for that
// tick; downstream applies its own fallback policy.
type FrameSet struct {
	PTS    time.Duration
	Frames map[ids.InputId]Frame
}

func NewFrameSet(pts time.Duration) FrameSet {
	return FrameSet{PTS: pts, Frames: make(map[ids.InputId]Frame)}
}

// SampleSet maps InputId to an ordered list of SampleBatches covering
// [StartPTS, EndPTS). The list may be empty for an input with nothing to
// contribute this tick.
type SampleSet struct {
	StartPTS time.Duration
	EndPTS   time.Duration
	Batches  map[ids.InputId][]SampleBatch
}

func NewSampleSet(start, end time.Duration) SampleSet {
	return SampleSet{StartPTS: start, EndPTS: end, Batches: make(map[ids.InputId][]SampleBatch)}
}
