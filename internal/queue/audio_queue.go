package queue

import (
	"sync"
	"time"

	"github.com/smeltergo/compositor/internal/frame"
	"github.com/smeltergo/compositor/internal/ids"
)

func adjustBatchPTS(b frame.SampleBatch, offset time.Duration) frame.SampleBatch {
	b.StartPTS += offset
	return b
}

func batchPTS(b frame.SampleBatch) time.Duration { return b.StartPTS }

type inputAudio struct {
	state   *InputState[frame.SampleBatch]
	batches []frame.SampleBatch // ascending StartPTS
}

// AudioQueue aggregates per-input PCM sample batches. Ported from
// original_source/compositor_pipeline/src/queue/audio_queue.rs.
type AudioQueue struct {
	mu     sync.Mutex
	inputs map[ids.InputId]*inputAudio
}

func NewAudioQueue() *AudioQueue {
	return &AudioQueue{inputs: make(map[ids.InputId]*inputAudio)}
}

func (q *AudioQueue) AddInput(id ids.InputId) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.inputs[id] = &inputAudio{state: NewInputState(adjustBatchPTS, batchPTS)}
}

func (q *AudioQueue) RemoveInput(id ids.InputId) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inputs, id)
}

// EnqueueBatch pushes a newly-decoded sample batch (still in the input's
// local PTS space) through its InputState.
func (q *AudioQueue) EnqueueBatch(id ids.InputId, b frame.SampleBatch, elapsedSinceClockStart time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	in, ok := q.inputs[id]
	if !ok {
		return ErrUnknownInput
	}

	originalPTS := b.StartPTS
	for _, normalized := range in.state.Process(b, originalPTS, elapsedSinceClockStart) {
		in.batches = append(in.batches, normalized)
	}
	return nil
}

// PopSampleSet implements spec.md §4.2 AudioQueue.pop_sample_set: collect
// batches overlapping [startPTS, endPTS) per input, then drop batches whose
// EndPTS < startPTS. Partially-overlapping tail batches are kept in the
// buffer (not removed) so a later, wider window can still see them.
func (q *AudioQueue) PopSampleSet(startPTS, endPTS time.Duration) frame.SampleSet {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := frame.NewSampleSet(startPTS, endPTS)

	for id, in := range q.inputs {
		if in.state.Phase() != PhaseReady {
			continue
		}

		var collected []frame.SampleBatch
		for _, b := range in.batches {
			if b.StartPTS < endPTS && b.EndPTS() > startPTS {
				collected = append(collected, b)
			}
		}
		if collected != nil {
			out.Batches[id] = collected
		}

		kept := in.batches[:0:0]
		for _, b := range in.batches {
			if b.EndPTS() >= startPTS {
				kept = append(kept, b)
			}
		}
		in.batches = kept
	}

	return out
}

// Ready reports whether input id has buffered at least one batch whose
// StartPTS is past endPTS (i.e. it has caught up enough that no more data
// for this window will arrive), mirroring the Rust source's is_ready check
// inside pop_samples's drain loop.
func (q *AudioQueue) Ready(id ids.InputId, endPTS time.Duration) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	in, ok := q.inputs[id]
	if !ok || len(in.batches) == 0 {
		return false
	}
	return in.batches[len(in.batches)-1].StartPTS > endPTS
}
