package queue

import (
	"testing"
	"time"
)

func TestOutputSchedulerDrainsDueEvents(t *testing.T) {
	s := NewOutputScheduler()
	var ran []int
	s.ScheduleAt(time.Second, func() { ran = append(ran, 1) })
	s.ScheduleAt(2*time.Second, func() { ran = append(ran, 2) })

	s.DrainDue(time.Second)
	if len(ran) != 1 || ran[0] != 1 {
		t.Fatalf("expected only the first event to fire, got %v", ran)
	}

	s.DrainDue(3 * time.Second)
	if len(ran) != 2 || ran[1] != 2 {
		t.Fatalf("expected the second event to fire once its pts is reached, got %v", ran)
	}
}

func TestOutputSchedulerFIFOForIdenticalPTS(t *testing.T) {
	s := NewOutputScheduler()
	var order []int
	for i := 1; i <= 5; i++ {
		i := i
		s.ScheduleAt(time.Second, func() { order = append(order, i) })
	}
	s.DrainDue(time.Second)
	for i, v := range order {
		if v != i+1 {
			t.Fatalf("expected insertion order for identical apply_pts, got %v", order)
		}
	}
}

func TestOutputSchedulerPending(t *testing.T) {
	s := NewOutputScheduler()
	s.ScheduleAt(time.Second, func() {})
	s.ScheduleAt(2*time.Second, func() {})
	if s.Pending() != 2 {
		t.Fatalf("expected 2 pending events, got %d", s.Pending())
	}
	s.DrainDue(time.Second)
	if s.Pending() != 1 {
		t.Fatalf("expected 1 pending event after draining one, got %d", s.Pending())
	}
}
