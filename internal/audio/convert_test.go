package audio

import (
	"math"
	"testing"
)

func TestInt16ToFloat32_Empty(t *testing.T) {
	out := Int16ToFloat32(nil)
	if len(out) != 0 {
		t.Fatalf("expected empty slice, got length %d", len(out))
	}
}

func TestInt16ToFloat32_MaxInt16(t *testing.T) {
	out := Int16ToFloat32([]int16{math.MaxInt16})
	if out[0] != 1.0 {
		t.Fatalf("expected 1.0 for MaxInt16, got %f", out[0])
	}
}

func TestFloat32ToInt16_Clamps(t *testing.T) {
	out := Float32ToInt16([]float32{2.0, -2.0})
	if out[0] != math.MaxInt16 {
		t.Fatalf("expected MaxInt16 for 2.0, got %d", out[0])
	}
	if out[1] != -math.MaxInt16 {
		t.Fatalf("expected -MaxInt16 for -2.0, got %d", out[1])
	}
}

func TestBytesToInt16_RoundTrip(t *testing.T) {
	in := []int16{0, 1, -1, 12345, -12345, math.MaxInt16, math.MinInt16}
	got := BytesToInt16(Int16ToBytes(in))
	if len(got) != len(in) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], in[i])
		}
	}
}

func TestApplyGain(t *testing.T) {
	tests := []struct {
		name   string
		in     []float32
		volume int
		want   []float32
	}{
		{"full volume", []float32{0.5, -0.5}, 100, []float32{0.5, -0.5}},
		{"half volume", []float32{0.5, -0.5}, 50, []float32{0.25, -0.25}},
		{"muted", []float32{0.5, -0.5}, 0, []float32{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyGain(tt.in, tt.volume)
			for i := range tt.want {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-6 {
					t.Errorf("index %d: got %f, want %f", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestApplyGain_DoesNotMutateInput(t *testing.T) {
	in := []float32{0.8}
	_ = ApplyGain(in, 50)
	if in[0] != 0.8 {
		t.Fatalf("input mutated: got %f", in[0])
	}
}

func TestResample_SameRate(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3}
	out := Resample(in, 16000, 16000)
	if len(out) != 3 {
		t.Fatalf("expected unchanged length, got %d", len(out))
	}
}

func TestResample_Halve(t *testing.T) {
	in := make([]float32, 100)
	out := Resample(in, 32000, 16000)
	if len(out) != 50 {
		t.Fatalf("expected 50 samples, got %d", len(out))
	}
}

func TestResample_Double(t *testing.T) {
	in := []float32{0, 1.0}
	out := Resample(in, 8000, 16000)
	if len(out) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(out))
	}
	// 线性插值应产生单调递增序列
	for i := 1; i < len(out); i++ {
		if out[i] < out[i-1] {
			t.Errorf("not monotonic at %d: %f < %f", i, out[i], out[i-1])
		}
	}
}
