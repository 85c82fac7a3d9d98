package queue

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/smeltergo/compositor/internal/frame"
	"github.com/smeltergo/compositor/internal/ids"
)

// ErrUnknownInput is returned when an operation names an input that was
// never registered (or was already unregistered).
var ErrUnknownInput = errors.New("queue: unknown input id")

func adjustFramePTS(f frame.Frame, offset time.Duration) frame.Frame {
	f.PTS += offset
	return f
}

func framePTS(f frame.Frame) time.Duration { return f.PTS }

// inputFrames holds one input's PTS-ordered frame buffer plus the
// InputState machine that normalizes its PTS onto the output timeline.
type inputFrames struct {
	state  *InputState[frame.Frame]
	frames []frame.Frame // ascending PTS
}

// FrameQueue aggregates per-input video frames and, on demand, returns the
// best-aligned frame for a target PTS window. Ported from
// original_source/src/queue/internal_queue.rs (InternalQueue).
type FrameQueue struct {
	mu     sync.Mutex
	inputs map[ids.InputId]*inputFrames
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{inputs: make(map[ids.InputId]*inputFrames)}
}

func (q *FrameQueue) AddInput(id ids.InputId) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.inputs[id] = &inputFrames{state: NewInputState(adjustFramePTS, framePTS)}
}

func (q *FrameQueue) RemoveInput(id ids.InputId) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inputs, id)
}

// EnqueueFrame pushes a newly-decoded frame (still in the input's local PTS
// space) through its InputState and, once normalized, into the ordered
// buffer.
func (q *FrameQueue) EnqueueFrame(id ids.InputId, f frame.Frame, elapsedSinceClockStart time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	in, ok := q.inputs[id]
	if !ok {
		return ErrUnknownInput
	}

	originalPTS := f.PTS
	for _, normalized := range in.state.Process(f, originalPTS, elapsedSinceClockStart) {
		in.frames = append(in.frames, normalized)
	}
	// Process may emit a burst (the whole Buffering window at once); sort
	// defensively so a caller replaying a test fixture out of strict order
	// never corrupts pop_frame_set's staleness cutoff.
	sortFrames(in.frames)
	return nil
}

// PopFrameSet implements spec.md §4.2 FrameQueue.pop_frame_set: for each
// input, pick the frame whose PTS minimizes |pts - targetPTS| (ties broken
// by earlier PTS), then drop frames older than any future tick.
func (q *FrameQueue) PopFrameSet(targetPTS, tickDuration time.Duration) frame.FrameSet {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := frame.NewFrameSet(targetPTS)
	staleBefore := targetPTS - tickDuration/2

	for id, in := range q.inputs {
		if in.state.Phase() != PhaseReady || len(in.frames) == 0 {
			continue
		}

		bestIdx := -1
		bestDiff := time.Duration(1<<63 - 1)
		for i, f := range in.frames {
			diff := f.PTS - targetPTS
			if diff < 0 {
				diff = -diff
			}
			if diff < bestDiff {
				bestDiff = diff
				bestIdx = i
			}
		}
		if bestIdx >= 0 {
			out.Frames[id] = in.frames[bestIdx]
		}

		kept := in.frames[:0:0]
		for _, f := range in.frames {
			if f.PTS >= staleBefore {
				kept = append(kept, f)
			}
		}
		in.frames = kept
	}

	return out
}

// AllRequiredReady reports whether every input in requiredIDs has at least
// one frame available at or spanning targetPTS (used by Scheduler's
// required-inputs check).
func (q *FrameQueue) AllRequiredReady(targetPTS time.Duration, requiredIDs []ids.InputId) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, id := range requiredIDs {
		in, ok := q.inputs[id]
		if !ok {
			return false
		}
		if in.state.Phase() != PhaseReady || len(in.frames) == 0 {
			return false
		}
		first, last := in.frames[0].PTS, in.frames[len(in.frames)-1].PTS
		if first < targetPTS && last < targetPTS {
			return false
		}
	}
	return true
}

// sortFrames keeps a buffer ascending by PTS; exported for tests that feed
// frames out of order to exercise pop semantics.
func sortFrames(fs []frame.Frame) {
	sort.Slice(fs, func(i, j int) bool { return fs[i].PTS < fs[j].PTS })
}
