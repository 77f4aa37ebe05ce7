// Package model defines the foreign boundaries to the two opaque neural
// components of the synthesis pipeline: the causal token generator and the
// SNAC hierarchical audio decoder. Both are consumed as black-box functions;
// their internals live in exported ONNX graphs and are never reimplemented
// here.
package model

import (
	"context"

	"github.com/example/go-maya-tts/internal/codec"
)

// GenerateRequest carries one generation call's inputs and sampling
// parameters. InputIDs and AttentionMask are [1, T] row-major.
type GenerateRequest struct {
	InputIDs      []int64
	AttentionMask []int64
	Temperature   float64
	TopP          float64
	MaxNewTokens  int
	PadTokenID    int64
}

// Generator is the causal language model boundary. Generate returns the full
// output sequence: the prompt echoed first, then the sampled continuation up
// to MaxNewTokens. Generation runs to completion or its token bound; there is
// no mid-generation interrupt, the context only covers session scheduling.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]int64, error)
}

// CodecDecoder is the hierarchical audio decoder boundary. Decode consumes
// the three demultiplexed code streams (each passed as a single-batch [1, T]
// int64 sequence) and returns mono float32 samples at 24 kHz.
//
// Decoding is a pure function of the code streams: identical streams yield
// identical samples.
type CodecDecoder interface {
	Decode(ctx context.Context, streams codec.Streams) ([]float32, error)
}
