package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/go-maya-tts/internal/onnx"
)

// GeneratorGraph is the manifest name of the exported causal LM graph.
const GeneratorGraph = "generator"

// graphRunner abstracts onnx.Runner so the adapters can be exercised with
// in-memory fakes.
type graphRunner interface {
	Run(ctx context.Context, inputs map[string]*onnx.Tensor) (map[string]*onnx.Tensor, error)
	Close()
}

// ONNXGenerator runs the exported generate-with-sampling graph. The graph
// embeds the autoregressive loop (GenAI-style export): inputs are the prompt
// ids, attention mask and sampling scalars; the single output "sequences" is
// the prompt followed by the sampled continuation.
type ONNXGenerator struct {
	runner graphRunner
}

// NewONNXGenerator wires a generator around an already-created graph runner.
func NewONNXGenerator(runner graphRunner) *ONNXGenerator {
	return &ONNXGenerator{runner: runner}
}

// Generate implements Generator.
func (g *ONNXGenerator) Generate(ctx context.Context, req GenerateRequest) ([]int64, error) {
	if len(req.InputIDs) == 0 {
		return nil, errors.New("generate: prompt must not be empty")
	}
	if len(req.AttentionMask) != len(req.InputIDs) {
		return nil, fmt.Errorf("generate: attention mask length %d does not match prompt length %d",
			len(req.AttentionMask), len(req.InputIDs))
	}

	promptLen := int64(len(req.InputIDs))

	inputIDs, err := onnx.NewTensor(req.InputIDs, []int64{1, promptLen})
	if err != nil {
		return nil, fmt.Errorf("generate: input_ids tensor: %w", err)
	}

	mask, err := onnx.NewTensor(req.AttentionMask, []int64{1, promptLen})
	if err != nil {
		return nil, fmt.Errorf("generate: attention_mask tensor: %w", err)
	}

	temperature, err := onnx.NewTensor([]float32{float32(req.Temperature)}, []int64{1})
	if err != nil {
		return nil, fmt.Errorf("generate: temperature tensor: %w", err)
	}

	topP, err := onnx.NewTensor([]float32{float32(req.TopP)}, []int64{1})
	if err != nil {
		return nil, fmt.Errorf("generate: top_p tensor: %w", err)
	}

	maxNew, err := onnx.NewTensor([]int64{int64(req.MaxNewTokens)}, []int64{1})
	if err != nil {
		return nil, fmt.Errorf("generate: max_new_tokens tensor: %w", err)
	}

	padID, err := onnx.NewTensor([]int64{req.PadTokenID}, []int64{1})
	if err != nil {
		return nil, fmt.Errorf("generate: pad_token_id tensor: %w", err)
	}

	outputs, err := g.runner.Run(ctx, map[string]*onnx.Tensor{
		"input_ids":      inputIDs,
		"attention_mask": mask,
		"temperature":    temperature,
		"top_p":          topP,
		"max_new_tokens": maxNew,
		"pad_token_id":   padID,
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	out, ok := outputs["sequences"]
	if !ok {
		return nil, errors.New("generate: graph produced no 'sequences' output")
	}

	sequence, err := onnx.ExtractInt64(out)
	if err != nil {
		return nil, fmt.Errorf("generate: sequences output: %w", err)
	}

	slog.Debug("generation complete",
		"prompt_tokens", promptLen,
		"total_tokens", len(sequence),
	)

	return sequence, nil
}

// Close releases the underlying ORT session.
func (g *ONNXGenerator) Close() {
	if g.runner != nil {
		g.runner.Close()
	}
}
