package queue

import (
	"container/heap"
	"sync"
	"time"
)

// ScheduledCallback mutates scene or output registration state; it runs
// inline on the scheduler's goroutine, so it must not block.
type ScheduledCallback func()

type scheduledEvent struct {
	applyPTS time.Duration
	seq      uint64 // insertion order, the deterministic tie-break
	callback ScheduledCallback
}

// eventHeap is a container/heap min-heap ordered by (applyPTS, seq), giving
// identical-PTS events FIFO semantics per spec.md §5 ("Scheduled events
// with identical apply_pts run in insertion order").
type eventHeap []*scheduledEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].applyPTS != h[j].applyPTS {
		return h[i].applyPTS < h[j].applyPTS
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(*scheduledEvent)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// OutputScheduler accepts apply-at-PTS scene/output updates and drains them
// in PTS order as the tick loop advances. No teacher/original_source file
// implements this as a standalone priority queue (the Rust pipeline applies
// updates synchronously under a lock); it is an ADDED component per
// SPEC_FULL.md to support schedule_update. container/heap is stdlib because
// no example in the retrieved pack imports a third-party priority-queue
// library.
type OutputScheduler struct {
	mu   sync.Mutex
	heap eventHeap
	next uint64
}

func NewOutputScheduler() *OutputScheduler {
	return &OutputScheduler{}
}

// ScheduleAt enqueues callback to run the first time the tick loop observes
// buffer_pts >= applyPTS.
func (s *OutputScheduler) ScheduleAt(applyPTS time.Duration, callback ScheduledCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	heap.Push(&s.heap, &scheduledEvent{applyPTS: applyPTS, seq: s.next, callback: callback})
	s.next++
}

// DrainDue pops and runs every event with applyPTS <= bufferPTS, in
// (applyPTS, seq) order.
func (s *OutputScheduler) DrainDue(bufferPTS time.Duration) {
	for {
		s.mu.Lock()
		if len(s.heap) == 0 || s.heap[0].applyPTS > bufferPTS {
			s.mu.Unlock()
			return
		}
		ev := heap.Pop(&s.heap).(*scheduledEvent)
		s.mu.Unlock()

		ev.callback()
	}
}

// Pending reports how many scheduled events remain; used by tests to assert
// schedule_update drains deterministically.
func (s *OutputScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.heap)
}
