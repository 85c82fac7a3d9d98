// Package queue implements per-input jitter buffering (InputState),
// frame/sample aggregation (FrameQueue, AudioQueue), tick-driven dispatch
// (Scheduler), and apply-at-PTS scheduled callbacks (OutputScheduler).
//
// Ported from the teacher's dedicated-goroutine idiom
// (internal/lua/engine.go's watchLoop, internal/call/manager.go's
// dispatchLoop) and grounded on original_source's src/queue package.
package queue

import "time"

// BufferDuration is the single, global jitter-absorption window every input
// passes through before entering Ready. Kept global rather than per-input
// per the spec's open-question resolution (see DESIGN.md).
const BufferDuration = 10 * time.Millisecond

// InputStatePhase tags which variant of the InputState machine an input is
// currently in.
type InputStatePhase int

const (
	PhaseWaitingForStart InputStatePhase = iota
	PhaseBuffering
	PhaseReady
)

// bufferedItem is one payload queued while still in Buffering, retaining
// its original (pre-offset) PTS so the buffer-duration check and the
// eventual offset computation both have what they need.
type bufferedItem[T any] struct {
	payload     T
	originalPTS time.Duration
}

// InputState is the linear, monotonic per-input state machine described in
// spec.md §4.1: WaitingForStart -> Buffering -> Ready. T is the payload
// type (frame.Frame or frame.SampleBatch); adjust must return a copy of
// payload with its PTS shifted by offset.
type InputState[T any] struct {
	phase   InputStatePhase
	buffer  []bufferedItem[T]
	offset  time.Duration
	adjust  func(payload T, offset time.Duration) T
	ptsOf   func(payload T) time.Duration
}

// NewInputState constructs a WaitingForStart InputState. adjust returns a
// copy of payload with its PTS increased by offset; ptsOf extracts a
// payload's (pre-offset) PTS.
func NewInputState[T any](adjust func(T, time.Duration) T, ptsOf func(T) time.Duration) *InputState[T] {
	return &InputState[T]{
		phase:  PhaseWaitingForStart,
		adjust: adjust,
		ptsOf:  ptsOf,
	}
}

func (s *InputState[T]) Phase() InputStatePhase { return s.phase }

// Process implements the contract from spec.md §4.1:
//   - WaitingForStart: buffer the first payload, transition to Buffering, emit nothing.
//   - Buffering: append; once the buffered span reaches BufferDuration, compute
//     the offset, rewrite every buffered PTS, transition to Ready, emit the
//     whole buffered run.
//   - Ready: apply the stored offset, emit the single payload.
//
// elapsedSinceClockStart is the elapsed wall-clock time since the shared
// Clock's origin, used only at the Buffering->Ready transition.
func (s *InputState[T]) Process(payload T, originalPTS time.Duration, elapsedSinceClockStart time.Duration) []T {
	if originalPTS < 0 {
		originalPTS = 0
	}

	switch s.phase {
	case PhaseWaitingForStart:
		s.buffer = append(s.buffer, bufferedItem[T]{payload: payload, originalPTS: originalPTS})
		s.phase = PhaseBuffering
		return nil

	case PhaseBuffering:
		s.buffer = append(s.buffer, bufferedItem[T]{payload: payload, originalPTS: originalPTS})
		first := s.buffer[0].originalPTS
		last := s.buffer[len(s.buffer)-1].originalPTS
		if last-first < BufferDuration {
			return nil
		}

		offset := elapsedSinceClockStart - first
		out := make([]T, 0, len(s.buffer))
		for _, item := range s.buffer {
			out = append(out, s.adjust(item.payload, offset))
		}
		s.buffer = nil
		s.offset = offset
		s.phase = PhaseReady
		return out

	default: // PhaseReady
		return []T{s.adjust(payload, s.offset)}
	}
}

// Offset returns the fixed offset established at the Buffering->Ready
// transition. Only meaningful once Phase() == PhaseReady.
func (s *InputState[T]) Offset() time.Duration {
	return s.offset
}
