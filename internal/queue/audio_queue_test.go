package queue

import (
	"testing"
	"time"

	"github.com/smeltergo/compositor/internal/frame"
)

func primeAudioReady(t *testing.T, q *AudioQueue, batches ...frame.SampleBatch) {
	t.Helper()
	q.AddInput("a")
	first := frame.SampleBatch{Samples: frame.Mono16{0}, StartPTS: 0, SampleRate: 1}
	second := frame.SampleBatch{Samples: frame.Mono16{0}, StartPTS: BufferDuration, SampleRate: 1}
	if err := q.EnqueueBatch("a", first, 0); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.EnqueueBatch("a", second, BufferDuration); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	for _, b := range batches {
		if err := q.EnqueueBatch("a", b, b.StartPTS); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
}

func TestEnqueueBatchUnknownInputErrors(t *testing.T) {
	q := NewAudioQueue()
	if err := q.EnqueueBatch("missing", frame.SampleBatch{}, 0); err != ErrUnknownInput {
		t.Fatalf("expected ErrUnknownInput, got %v", err)
	}
}

func TestPopSampleSetCollectsOverlappingBatches(t *testing.T) {
	q := NewAudioQueue()
	primeAudioReady(t, q)

	ss := q.PopSampleSet(0, 10*BufferDuration)
	batches, ok := ss.Batches["a"]
	if !ok || len(batches) == 0 {
		t.Fatal("expected overlapping batches to be collected")
	}
}

func TestPopSampleSetExcludesNonOverlapping(t *testing.T) {
	q := NewAudioQueue()
	primeAudioReady(t, q)

	ss := q.PopSampleSet(1000*BufferDuration, 1001*BufferDuration)
	if _, ok := ss.Batches["a"]; ok {
		t.Fatal("expected no batches for a window far past every buffered batch")
	}
}

func TestAudioReadyReflectsLookahead(t *testing.T) {
	q := NewAudioQueue()
	primeAudioReady(t, q)
	if q.Ready("missing", 0) {
		t.Fatal("unknown input should never report ready")
	}
	// primeAudioReady leaves batches starting at 10ms and 20ms.
	if !q.Ready("a", BufferDuration+BufferDuration/2) {
		t.Fatal("input with a batch starting past endPTS should report ready")
	}
	if q.Ready("a", 2*BufferDuration) {
		t.Fatal("input with no batch starting past endPTS should not report ready")
	}
}
