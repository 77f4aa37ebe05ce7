// Package audio converts decoded waveforms into the deliverable audio
// formats: raw 16-bit PCM frames and complete WAV files, both fixed at
// 24 kHz mono.
package audio

import (
	"encoding/binary"
	"errors"
	"math"
)

// Output format of the codec decoder.
const (
	ExpectedSampleRate = 24000
	ExpectedChannels   = 1
	ExpectedBitDepth   = 16
)

// EncodePCM16 converts float32 samples into little-endian 16-bit PCM bytes.
// Samples outside [-1, 1] are clamped before scaling.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		clamped := math.Max(-1.0, math.Min(1.0, float64(s)))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(clamped*32767)))
	}

	return out
}

// DecodePCM16 converts little-endian 16-bit PCM bytes back to float32
// samples in [-1, 1].
func DecodePCM16(data []byte) ([]float32, error) {
	if len(data)%2 != 0 {
		return nil, errors.New("PCM16 data length must be even")
	}

	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(v) / 32767
	}

	return samples, nil
}
