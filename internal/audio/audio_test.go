package audio

import (
	"errors"
	"math"
	"testing"
)

func peakOf(samples []float32) float32 {
	var peak float32
	for _, s := range samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}

	return peak
}

// ----------------------------------------------------------------------------
// PCM16
// ----------------------------------------------------------------------------

func TestEncodePCM16(t *testing.T) {
	t.Run("two bytes per sample", func(t *testing.T) {
		data := EncodePCM16([]float32{0.0, 0.5, -0.5, 1.0})
		if len(data) != 8 {
			t.Fatalf("got %d bytes, want 8", len(data))
		}
	})

	t.Run("zero sample encodes as zero", func(t *testing.T) {
		data := EncodePCM16([]float32{0.0})
		if data[0] != 0 || data[1] != 0 {
			t.Errorf("got bytes %v, want [0 0]", data)
		}
	})

	t.Run("full scale encodes as 32767 little-endian", func(t *testing.T) {
		data := EncodePCM16([]float32{1.0})
		if data[0] != 0xFF || data[1] != 0x7F {
			t.Errorf("got bytes %v, want [255 127]", data)
		}
	})

	t.Run("out-of-range samples are clamped", func(t *testing.T) {
		loud := EncodePCM16([]float32{2.0, -3.0})
		exact := EncodePCM16([]float32{1.0, -1.0})
		for i := range exact {
			if loud[i] != exact[i] {
				t.Fatalf("byte %d: clamped %d != exact %d", i, loud[i], exact[i])
			}
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		if data := EncodePCM16(nil); len(data) != 0 {
			t.Errorf("got %d bytes for empty input", len(data))
		}
	})
}

func TestDecodePCM16(t *testing.T) {
	t.Run("round trip within quantization error", func(t *testing.T) {
		in := []float32{0.0, 0.25, -0.75, 0.99}
		out, err := DecodePCM16(EncodePCM16(in))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) != len(in) {
			t.Fatalf("got %d samples, want %d", len(out), len(in))
		}
		for i := range in {
			if math.Abs(float64(out[i]-in[i])) > 1.0/32767 {
				t.Errorf("sample %d: got %f, want ~%f", i, out[i], in[i])
			}
		}
	})

	t.Run("rejects odd byte count", func(t *testing.T) {
		if _, err := DecodePCM16([]byte{0x01}); err == nil {
			t.Fatal("expected error for odd byte count")
		}
	})
}

// ----------------------------------------------------------------------------
// WAV round trip
// ----------------------------------------------------------------------------

func TestEncodeWAVRoundTrip(t *testing.T) {
	in := make([]float32, 240)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / ExpectedSampleRate))
	}

	data, err := EncodeWAV(in)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	out, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if len(out) != len(in) {
		t.Fatalf("got %d samples, want %d", len(out), len(in))
	}
	for i := range in {
		if math.Abs(float64(out[i]-in[i])) > 1.0/16384 {
			t.Fatalf("sample %d: got %f, want ~%f", i, out[i], in[i])
		}
	}
}

func TestEncodeWAVFromPCM16(t *testing.T) {
	t.Run("wraps PCM bytes without re-quantizing", func(t *testing.T) {
		samples := []float32{0.0, 0.5, -0.5}
		pcm := EncodePCM16(samples)

		data, err := EncodeWAVFromPCM16(pcm)
		if err != nil {
			t.Fatalf("EncodeWAVFromPCM16 failed: %v", err)
		}

		out, err := DecodeWAV(data)
		if err != nil {
			t.Fatalf("DecodeWAV failed: %v", err)
		}
		if len(out) != len(samples) {
			t.Fatalf("got %d samples, want %d", len(out), len(samples))
		}
	})

	t.Run("rejects odd payload", func(t *testing.T) {
		if _, err := EncodeWAVFromPCM16([]byte{0x01}); err == nil {
			t.Fatal("expected error for odd payload")
		}
	})
}

func TestDecodeWAV_Errors(t *testing.T) {
	t.Run("rejects empty input", func(t *testing.T) {
		if _, err := DecodeWAV(nil); err == nil {
			t.Fatal("expected error for empty input")
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := DecodeWAV([]byte("not a wav file at all"))
		if err == nil {
			t.Fatal("expected error for invalid WAV")
		}
		if errors.Is(err, ErrFormatMismatch) {
			t.Error("garbage must not report a format mismatch")
		}
	})
}

// ----------------------------------------------------------------------------
// DSP hooks
// ----------------------------------------------------------------------------

func TestPeakNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		wantPeak float32
	}{
		{
			name:     "scales half-amplitude signal to 1.0",
			input:    []float32{0.0, 0.5, -0.25, 0.5},
			wantPeak: 1.0,
		},
		{
			name:     "scales quiet signal",
			input:    []float32{0.1, -0.1, 0.05},
			wantPeak: 1.0,
		},
		{
			name:     "silence remains silence",
			input:    []float32{0.0, 0.0, 0.0},
			wantPeak: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]float32, len(tt.input))
			copy(in, tt.input)

			got := PeakNormalize(in)
			peak := peakOf(got)

			if tt.wantPeak == 0.0 {
				if peak != 0.0 {
					t.Errorf("expected silence, got peak %f", peak)
				}

				return
			}

			if math.Abs(float64(peak-tt.wantPeak)) > 1e-6 {
				t.Errorf("peak = %f, want %f", peak, tt.wantPeak)
			}
		})
	}
}

func TestDCBlock(t *testing.T) {
	// A constant offset decays toward zero through the filter.
	in := make([]float32, ExpectedSampleRate)
	for i := range in {
		in[i] = 0.5
	}

	out := DCBlock(in, ExpectedSampleRate)

	tail := out[len(out)-100:]
	if p := peakOf(tail); p > 0.05 {
		t.Errorf("DC offset survived filtering: tail peak %f", p)
	}
}

func TestFadeIn(t *testing.T) {
	in := make([]float32, 2400)
	for i := range in {
		in[i] = 1.0
	}

	out := FadeIn(in, ExpectedSampleRate, 50)

	if out[0] != 0 {
		t.Errorf("first sample = %f, want 0", out[0])
	}
	if out[len(out)-1] != 1.0 {
		t.Errorf("last sample = %f, want 1.0", out[len(out)-1])
	}

	// 50 ms at 24 kHz is 1200 samples.
	if out[600] <= out[300] {
		t.Error("ramp is not increasing")
	}
}

func TestFadeOut(t *testing.T) {
	in := make([]float32, 2400)
	for i := range in {
		in[i] = 1.0
	}

	out := FadeOut(in, ExpectedSampleRate, 50)

	if out[0] != 1.0 {
		t.Errorf("first sample = %f, want 1.0", out[0])
	}
	if out[len(out)-1] != 0 {
		t.Errorf("last sample = %f, want 0", out[len(out)-1])
	}
}

func TestApplyHooks(t *testing.T) {
	t.Run("runs hooks in order", func(t *testing.T) {
		var order []string
		first := func(s []float32) []float32 {
			order = append(order, "first")
			return s
		}
		second := func(s []float32) []float32 {
			order = append(order, "second")
			return s
		}

		ApplyHooks([]float32{0.1}, first, second)

		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("hook order = %v", order)
		}
	})

	t.Run("no hooks passes samples through", func(t *testing.T) {
		in := []float32{0.1, 0.2}
		out := ApplyHooks(in)
		if &out[0] != &in[0] {
			t.Error("expected the same buffer back")
		}
	})
}
