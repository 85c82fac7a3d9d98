package mixer

import (
	"time"

	"github.com/smeltergo/compositor/internal/frame"
)

// sampleValue extracts the i-th sample frame as (left, right), normalized
// to the int16 amplitude range: mono duplicates into both channels, 32-bit
// layouts are scaled down. Out-of-range indices return silence.
func sampleValue(s frame.Samples, i int) (float64, float64) {
	switch v := s.(type) {
	case frame.Mono16:
		if i < 0 || i >= len(v) {
			return 0, 0
		}
		x := float64(v[i])
		return x, x
	case frame.Stereo16:
		if i < 0 || i >= len(v) {
			return 0, 0
		}
		return float64(v[i][0]), float64(v[i][1])
	case frame.Mono32:
		if i < 0 || i >= len(v) {
			return 0, 0
		}
		x := float64(v[i]) / 65536.0
		return x, x
	case frame.Stereo32:
		if i < 0 || i >= len(v) {
			return 0, 0
		}
		return float64(v[i][0]) / 65536.0, float64(v[i][1]) / 65536.0
	default:
		return 0, 0
	}
}

// stereoSampleAt finds the batch covering t and linearly interpolates the
// stereo value at that PTS from its native sample rate. Used both when the
// batch's rate equals the mixing rate (passthrough reduces to picking the
// nearest exact index) and when it differs; a full sinc resampler is not
// available in this tree, so linear interpolation stands in for both
// policies (see the design ledger's resampler entry).
func stereoSampleAt(batches []frame.SampleBatch, t time.Duration) (float64, float64, bool) {
	for _, b := range batches {
		if t < b.StartPTS || t >= b.EndPTS() {
			continue
		}
		srcIndex := (t - b.StartPTS).Seconds() * float64(b.SampleRate)
		lo := int(srcIndex)
		frac := srcIndex - float64(lo)
		l0, r0 := sampleValue(b.Samples, lo)
		l1, r1 := sampleValue(b.Samples, lo+1)
		return l0 + (l1-l0)*frac, r0 + (r1-r0)*frac, true
	}
	return 0, 0, false
}

// ResampleToWindow produces an expectedCount-length stereo buffer at
// mixingSampleRate covering [startPTS, startPTS+expectedCount/mixingSampleRate),
// zero-padded anywhere the input has no data (spec.md §4.6 step 2).
func ResampleToWindow(batches []frame.SampleBatch, startPTS time.Duration, mixingSampleRate, expectedCount int) [][2]float64 {
	out := make([][2]float64, expectedCount)
	if len(batches) == 0 {
		return out
	}
	step := time.Duration(float64(time.Second) / float64(mixingSampleRate))
	for i := 0; i < expectedCount; i++ {
		t := startPTS + time.Duration(i)*step
		if l, r, ok := stereoSampleAt(batches, t); ok {
			out[i] = [2]float64{l, r}
		}
	}
	return out
}
