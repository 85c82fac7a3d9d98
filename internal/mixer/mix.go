package mixer

import "math"

const (
	int16Min = -32768
	int16Max = 32767
)

// Strategy picks how per-tick accumulator overflow is handled, per
// spec.md §4.6 step 4.
type Strategy int

const (
	StrategySumClip Strategy = iota
	StrategySumScale
)

// Sum accumulates every input's resampled, volume-weighted stereo buffer
// into i64 accumulators (step 3) and applies the configured strategy
// (step 4). All input buffers and volumes must be the same length/count.
func Sum(inputs [][][2]float64, volumes []float32, strategy Strategy, expectedCount int) [][2]int16 {
	accL := make([]int64, expectedCount)
	accR := make([]int64, expectedCount)

	for k, buf := range inputs {
		vol := float64(volumes[k])
		n := len(buf)
		if n > expectedCount {
			n = expectedCount
		}
		for i := 0; i < n; i++ {
			accL[i] += int64(math.Round(buf[i][0] * vol))
			accR[i] += int64(math.Round(buf[i][1] * vol))
		}
	}

	switch strategy {
	case StrategySumScale:
		var maxAbs int64
		for i := 0; i < expectedCount; i++ {
			if a := abs64(accL[i]); a > maxAbs {
				maxAbs = a
			}
			if a := abs64(accR[i]); a > maxAbs {
				maxAbs = a
			}
		}
		factor := 1.0
		if maxAbs > int16Max {
			factor = float64(int16Max) / float64(maxAbs)
		}
		out := make([][2]int16, expectedCount)
		for i := 0; i < expectedCount; i++ {
			out[i] = [2]int16{
				clampInt16(float64(accL[i]) * factor),
				clampInt16(float64(accR[i]) * factor),
			}
		}
		return out

	default: // StrategySumClip
		out := make([][2]int16, expectedCount)
		for i := 0; i < expectedCount; i++ {
			out[i] = [2]int16{clampInt16(float64(accL[i])), clampInt16(float64(accR[i]))}
		}
		return out
	}
}

func clampInt16(v float64) int16 {
	if v < int16Min {
		return int16Min
	}
	if v > int16Max {
		return int16Max
	}
	return int16(v)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// DownmixToMono averages L and R via i32 arithmetic, per spec.md §4.6 step 5.
func DownmixToMono(stereo [][2]int16) []int16 {
	out := make([]int16, len(stereo))
	for i, s := range stereo {
		out[i] = int16((int32(s[0]) + int32(s[1])) / 2)
	}
	return out
}
