package audio

import "math"

// Hook transforms a sample buffer in the post-processing chain. Hooks may
// modify the buffer in place and must return the buffer they produced.
type Hook func(samples []float32) []float32

// ApplyHooks runs the hooks in order over the samples.
func ApplyHooks(samples []float32, hooks ...Hook) []float32 {
	out := samples
	for _, hook := range hooks {
		out = hook(out)
	}

	return out
}

// PeakNormalize scales samples so the peak amplitude reaches 1.0. Silent
// buffers pass through unchanged.
func PeakNormalize(samples []float32) []float32 {
	var peak float32
	for _, s := range samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}

	if peak == 0 {
		return samples
	}

	gain := 1.0 / peak
	for i := range samples {
		samples[i] *= gain
	}

	return samples
}

// DCBlock removes DC offset with a first-order high-pass filter tuned to a
// cutoff well below the audible band.
func DCBlock(samples []float32, sampleRate int) []float32 {
	if len(samples) == 0 || sampleRate < 1 {
		return samples
	}

	const cutoffHz = 20.0
	r := float32(1.0 - 2.0*math.Pi*cutoffHz/float64(sampleRate))

	var prevIn, prevOut float32
	for i, s := range samples {
		out := s - prevIn + r*prevOut
		prevIn = s
		prevOut = out
		samples[i] = out
	}

	return samples
}

// FadeIn applies a linear fade-in ramp over the given duration in
// milliseconds.
func FadeIn(samples []float32, sampleRate int, ms float64) []float32 {
	n := rampLength(len(samples), sampleRate, ms)
	for i := 0; i < n; i++ {
		samples[i] *= float32(i) / float32(n)
	}

	return samples
}

// FadeOut applies a linear fade-out ramp over the given duration in
// milliseconds.
func FadeOut(samples []float32, sampleRate int, ms float64) []float32 {
	n := rampLength(len(samples), sampleRate, ms)
	start := len(samples) - n
	for i := 0; i < n; i++ {
		samples[start+i] *= float32(n-1-i) / float32(n)
	}

	return samples
}

func rampLength(total, sampleRate int, ms float64) int {
	if total == 0 || sampleRate < 1 || ms <= 0 {
		return 0
	}

	n := int(float64(sampleRate) * ms / 1000.0)
	if n > total {
		n = total
	}

	return n
}
