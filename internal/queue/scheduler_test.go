package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/smeltergo/compositor/internal/clock"
	"github.com/smeltergo/compositor/internal/frame"
	"github.com/smeltergo/compositor/internal/ids"
)

func TestSchedulerDispatchesOnceInputsArePresent(t *testing.T) {
	clk := clock.New()
	frames := NewFrameQueue()
	samples := NewAudioQueue()
	// framerateNum/Den chosen for a very short tick so the test completes
	// quickly without needing real-time mode.
	s := NewScheduler(clk, frames, samples, 1000, 1, false)

	var mu sync.Mutex
	var dispatches int
	s.SetDispatchFunc(func(fs frame.FrameSet, ss frame.SampleSet) {
		mu.Lock()
		dispatches++
		mu.Unlock()
	})

	go s.Run()
	defer s.Stop()

	s.NotifyFirstFrame()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := dispatches
		mu.Unlock()
		if n > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected at least one dispatch after NotifyFirstFrame")
}

func TestSchedulerNotifyFirstFrameIsIdempotent(t *testing.T) {
	clk := clock.New()
	s := NewScheduler(clk, NewFrameQueue(), NewAudioQueue(), 1000, 1, false)
	s.NotifyFirstFrame()
	s.NotifyFirstFrame() // must not panic or block
}

func TestSchedulerInvokesListenersWithDeliveredFrames(t *testing.T) {
	clk := clock.New()
	frames := NewFrameQueue()
	samples := NewAudioQueue()
	s := NewScheduler(clk, frames, samples, 1000, 1, true)
	s.SetRequiredInputs(nil)

	frames.AddInput("in1")
	frames.EnqueueFrame("in1", frame.Frame{PTS: 0}, 0)
	frames.EnqueueFrame("in1", frame.Frame{PTS: BufferDuration}, BufferDuration)

	var mu sync.Mutex
	var seen []ids.InputId
	s.AddListener(func(id ids.InputId, f *frame.Frame) {
		mu.Lock()
		seen = append(seen, id)
		mu.Unlock()
	})
	s.SetDispatchFunc(func(frame.FrameSet, frame.SampleSet) {})

	go s.Run()
	defer s.Stop()
	s.NotifyFirstFrame()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected the listener to observe at least one delivered frame")
}
