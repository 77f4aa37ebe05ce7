package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/go-maya-tts/internal/codec"
	"github.com/example/go-maya-tts/internal/onnx"
)

// DecoderGraph is the manifest name of the exported SNAC decoder graph.
const DecoderGraph = "codec_decoder"

// ONNXCodecDecoder runs the exported SNAC decoder. Inputs are the three code
// levels as [1, T] int64 tensors named codes_0/codes_1/codes_2; the single
// float32 output "audio" holds the mono waveform.
type ONNXCodecDecoder struct {
	runner graphRunner
}

// NewONNXCodecDecoder wires a decoder around an already-created graph runner.
func NewONNXCodecDecoder(runner graphRunner) *ONNXCodecDecoder {
	return &ONNXCodecDecoder{runner: runner}
}

// Decode implements CodecDecoder.
func (d *ONNXCodecDecoder) Decode(ctx context.Context, streams codec.Streams) ([]float32, error) {
	if streams.Empty() {
		return nil, errors.New("decode: code streams must not be empty")
	}

	inputs := make(map[string]*onnx.Tensor, 3)
	for i, level := range [][]int64{streams.Level1, streams.Level2, streams.Level3} {
		t, err := onnx.NewTensor(level, []int64{1, int64(len(level))})
		if err != nil {
			return nil, fmt.Errorf("decode: codes_%d tensor: %w", i, err)
		}

		inputs[fmt.Sprintf("codes_%d", i)] = t
	}

	outputs, err := d.runner.Run(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	out, ok := outputs["audio"]
	if !ok {
		return nil, errors.New("decode: graph produced no 'audio' output")
	}

	samples, err := onnx.ExtractFloat32(out)
	if err != nil {
		return nil, fmt.Errorf("decode: audio output: %w", err)
	}

	slog.Debug("codec decode complete",
		"frames", streams.Frames(),
		"samples", len(samples),
	)

	return samples, nil
}

// Close releases the underlying ORT session.
func (d *ONNXCodecDecoder) Close() {
	if d.runner != nil {
		d.runner.Close()
	}
}
