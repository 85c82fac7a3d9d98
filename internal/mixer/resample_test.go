package mixer

import (
	"testing"
	"time"

	"github.com/smeltergo/compositor/internal/frame"
)

func TestResampleToWindowZeroPadsMissingRanges(t *testing.T) {
	batches := []frame.SampleBatch{
		{Samples: frame.Stereo16{{1000, 1000}}, StartPTS: 10 * time.Second, SampleRate: 1},
	}
	out := ResampleToWindow(batches, 0, 1, 4)
	if len(out) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(out))
	}
	for i, s := range out {
		if s[0] != 0 || s[1] != 0 {
			t.Fatalf("sample %d should be silence (batch starts well after window), got %v", i, s)
		}
	}
}

func TestResampleToWindowCoversBatchRange(t *testing.T) {
	batches := []frame.SampleBatch{
		{Samples: frame.Stereo16{{0, 0}, {1000, -1000}}, StartPTS: 0, SampleRate: 2},
	}
	out := ResampleToWindow(batches, 0, 2, 2)
	if out[0][0] != 0 {
		t.Fatalf("first sample should be 0, got %v", out[0][0])
	}
	if out[1][0] != 1000 || out[1][1] != -1000 {
		t.Fatalf("second sample should equal second native sample, got %v", out[1])
	}
}

func TestResampleToWindowMonoDuplicatesChannels(t *testing.T) {
	batches := []frame.SampleBatch{
		{Samples: frame.Mono16{500}, StartPTS: 0, SampleRate: 1},
	}
	out := ResampleToWindow(batches, 0, 1, 1)
	if out[0][0] != 500 || out[0][1] != 500 {
		t.Fatalf("mono sample should duplicate into both channels, got %v", out[0])
	}
}

func TestResampleToWindowEmptyBatchesIsAllSilence(t *testing.T) {
	out := ResampleToWindow(nil, 0, 1, 3)
	if len(out) != 3 {
		t.Fatalf("expected 3 silent samples, got %d", len(out))
	}
}
