package queue

import (
	"log"
	"sync"
	"time"

	"github.com/smeltergo/compositor/internal/clock"
	"github.com/smeltergo/compositor/internal/frame"
	"github.com/smeltergo/compositor/internal/ids"
)

// DispatchFunc receives one tick's aligned output: a FrameSet and a
// SampleSet spanning [prevPTS, bufferPTS).
type DispatchFunc func(frame.FrameSet, frame.SampleSet)

// InputListener is notified once per dispatched tick that an input
// contributed to; the pipeline uses it to raise INPUT_PLAYING.
type InputListener func(id ids.InputId, f *frame.Frame)

// Scheduler drives ticks at the configured output framerate and decides
// when FrameQueue/AudioQueue dispatch. Ported from
// original_source/src/queue/queue_thread.rs (QueueThread), rebuilt on a
// dedicated goroutine with time.Ticker, matching the teacher's
// dedicated-goroutine-per-subsystem idiom.
type Scheduler struct {
	clock        *clock.Clock
	frames       *FrameQueue
	samples      *AudioQueue
	output       *OutputScheduler
	tickDuration time.Duration
	realTimeMode bool

	mu           sync.Mutex
	requiredIDs  []ids.InputId
	listeners    []InputListener
	dispatchFn   DispatchFunc

	started   chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	tickIndex int64
	prevPTS   time.Duration
}

// NewScheduler builds a Scheduler for the given output framerate
// (framerateNum/framerateDen fps) sharing clk with its FrameQueue/AudioQueue.
func NewScheduler(clk *clock.Clock, frames *FrameQueue, samples *AudioQueue, framerateNum, framerateDen int, realTimeMode bool) *Scheduler {
	tick := time.Duration(float64(time.Second) * float64(framerateDen) / float64(framerateNum))
	return &Scheduler{
		clock:        clk,
		frames:       frames,
		samples:      samples,
		output:       NewOutputScheduler(),
		tickDuration: tick,
		realTimeMode: realTimeMode,
		started:      make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
	}
}

func (s *Scheduler) OutputScheduler() *OutputScheduler { return s.output }

func (s *Scheduler) SetRequiredInputs(required []ids.InputId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requiredIDs = required
}

func (s *Scheduler) AddListener(l InputListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Scheduler) SetDispatchFunc(fn DispatchFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchFn = fn
}

// NotifyFirstFrame signals the scheduler that at least one frame has
// arrived, releasing it from its initial wait. Safe to call more than
// once; only the first call has an effect.
func (s *Scheduler) NotifyFirstFrame() {
	s.startOnce.Do(func() {
		s.started <- struct{}{}
	})
}

// Stop signals Run's goroutine to exit; it is observed at the next tick
// boundary or within 50ms, whichever is sooner, never force-killed (spec.md
// §5: cancellation is polled, not preemptive).
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Run blocks until the scheduler is stopped. Intended to be launched on its
// own goroutine, mirroring original_source's QueueThread::run.
func (s *Scheduler) Run() {
	select {
	case <-s.started:
	case <-s.stopCh:
		return
	}
	time.Sleep(BufferDuration)

	ticker := time.NewTicker(s.tickDuration)
	defer ticker.Stop()

	poll := time.NewTicker(50 * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick()
		case <-poll.C:
			// Poll the cancellation flag even if no tick fires, matching
			// spec.md §5's "max poll interval 50 ms".
		}
	}
}

func (s *Scheduler) tick() {
	bufferPTS := time.Duration(s.tickIndex) * s.tickDuration
	s.tickIndex++

	s.output.DrainDue(bufferPTS)

	s.mu.Lock()
	required := s.requiredIDs
	dispatchFn := s.dispatchFn
	s.mu.Unlock()

	wallElapsed := s.clock.Elapsed()
	deadlineUp := s.realTimeMode && wallElapsed+BufferDuration > bufferPTS
	allReady := s.frames.AllRequiredReady(bufferPTS, required)

	if !deadlineUp && !allReady {
		return // skip this tick; tick_index already incremented above
	}

	fs := s.frames.PopFrameSet(bufferPTS, s.tickDuration)
	ss := s.samples.PopSampleSet(s.prevPTS, bufferPTS)
	s.prevPTS = bufferPTS

	s.mu.Lock()
	listeners := append([]InputListener(nil), s.listeners...)
	s.mu.Unlock()

	for id, f := range fs.Frames {
		frameCopy := f
		for _, l := range listeners {
			l(id, &frameCopy)
		}
	}

	if dispatchFn != nil {
		dispatchFn(fs, ss)
	} else {
		log.Printf("QUEUE: tick %d dispatched with no listener attached", s.tickIndex)
	}
}
