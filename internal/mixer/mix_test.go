package mixer

import "testing"

func TestSumClipAddsInputsWithVolume(t *testing.T) {
	inputs := [][][2]float64{
		{{1000, 1000}},
		{{2000, 2000}},
	}
	volumes := []float32{1, 0.5}
	out := Sum(inputs, volumes, StrategySumClip, 1)
	if out[0][0] != 2000 || out[0][1] != 2000 {
		t.Fatalf("expected 1000*1 + 2000*0.5 = 2000, got %v", out[0])
	}
}

func TestSumClipClampsOverflow(t *testing.T) {
	inputs := [][][2]float64{{{30000, -30000}}, {{30000, -30000}}}
	volumes := []float32{1, 1}
	out := Sum(inputs, volumes, StrategySumClip, 1)
	if out[0][0] != int16Max || out[0][1] != int16Min {
		t.Fatalf("expected hard clip to int16 range, got %v", out[0])
	}
}

func TestSumScaleAttenuatesProportionally(t *testing.T) {
	inputs := [][][2]float64{{{40000, 0}}, {{40000, 0}}}
	volumes := []float32{1, 1}
	out := Sum(inputs, volumes, StrategySumScale, 1)
	// Raw sum is 80000, factor = 32767/80000 -> scaled value must not clip
	// and must stay below the raw sum.
	if out[0][0] > int16Max {
		t.Fatalf("SumScale must never exceed int16Max, got %v", out[0][0])
	}
	if out[0][0] <= 0 {
		t.Fatalf("expected a positive attenuated value, got %v", out[0][0])
	}
}

func TestSumScaleNoOpBelowThreshold(t *testing.T) {
	inputs := [][][2]float64{{{100, -100}}}
	volumes := []float32{1}
	out := Sum(inputs, volumes, StrategySumScale, 1)
	if out[0][0] != 100 || out[0][1] != -100 {
		t.Fatalf("values already within range should pass through unscaled, got %v", out[0])
	}
}

func TestDownmixToMonoAverages(t *testing.T) {
	stereo := [][2]int16{{100, 300}, {-100, -300}}
	mono := DownmixToMono(stereo)
	if mono[0] != 200 || mono[1] != -200 {
		t.Fatalf("expected averaged mono samples [200,-200], got %v", mono)
	}
}
